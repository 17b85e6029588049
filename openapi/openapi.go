package openapi

import (
	"strconv"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/rideway/rideway/config"
)

// Document builds the API description served at /openapi.json. It is
// assembled by hand rather than generated, so the file doubles as the
// canonical list of routes.
func Document(cfg *config.Config) *openapi3.T {
	doc := &openapi3.T{
		OpenAPI: "3.0.3",
		Info: &openapi3.Info{
			Title:       cfg.App.Name + " API",
			Version:     "1.0.0",
			Description: "Authentication, email verification, password reset, bookings and consent for the transfer booking frontend.",
		},
		Servers: openapi3.Servers{
			&openapi3.Server{URL: cfg.App.URL},
		},
		Paths: openapi3.NewPaths(),
	}

	doc.Paths.Set("/health", pathItemGet("Health check", "health",
		responses(map[int]string{200: "Service is up"})))

	doc.Paths.Set("/email-verification", pathItemPost(
		"Send, verify or inspect an email verification challenge. The action field selects the operation.",
		"emailVerification",
		responses(map[int]string{
			200: "Action succeeded",
			400: "Invalid payload or code",
			401: "Missing or wrong shared secret",
			429: "Send budget exhausted for this address",
		})))

	doc.Paths.Set("/email-webhook", pathItemPost(
		"Dispatch a transactional email. Only the PWReset email type is accepted.",
		"emailWebhook",
		responses(map[int]string{
			200: "Email dispatched or silently skipped",
			400: "Unknown email type",
			401: "Missing or wrong shared secret",
			429: "Too many reset requests for this address",
		})))

	doc.Paths.Set("/verify-reset-token", pathItemPost(
		"Check or consume a password reset token.",
		"verifyResetToken",
		responses(map[int]string{
			200: "Token state returned",
			401: "Missing or wrong shared secret",
		})))

	doc.Paths.Set("/reset-password", pathItemPost(
		"Set a new password using a reset token.",
		"resetPassword",
		responses(map[int]string{
			200: "Password updated",
			400: "Invalid token or password",
			401: "Missing or wrong shared secret",
		})))

	doc.Paths.Set("/auth/signup", pathItemPost("Create an account.", "signUp",
		responses(map[int]string{201: "Account created", 400: "Invalid input", 409: "Account already exists"})))
	doc.Paths.Set("/auth/signin", pathItemPost("Exchange credentials for tokens.", "signIn",
		responses(map[int]string{200: "Tokens issued", 401: "Invalid credentials"})))
	doc.Paths.Set("/auth/signout", pathItemPost("Revoke the current tokens.", "signOut",
		responses(map[int]string{200: "Signed out", 401: "Not authenticated"})))
	doc.Paths.Set("/auth/refresh", pathItemPost("Rotate a refresh token.", "refreshTokens",
		responses(map[int]string{200: "Fresh token pair", 401: "Unknown or expired refresh token"})))

	profile := &openapi3.PathItem{}
	profile.Get = operation("Fetch the caller's profile.", "getProfile",
		responses(map[int]string{200: "Profile", 401: "Not authenticated"}))
	profile.Put = operation("Update name or phone.", "updateProfile",
		responses(map[int]string{200: "Updated profile", 401: "Not authenticated"}))
	doc.Paths.Set("/auth/profile", profile)

	doc.Paths.Set("/auth/totp", pathItemGet("Report two-factor state.", "totpStatus",
		responses(map[int]string{200: "Enabled flag", 401: "Not authenticated"})))
	doc.Paths.Set("/auth/totp/setup", pathItemPost("Create a pending authenticator secret.", "totpSetup",
		responses(map[int]string{200: "Secret and provisioning URI", 409: "Already enabled"})))
	doc.Paths.Set("/auth/totp/enable", pathItemPost("Prove the authenticator and enable it.", "totpEnable",
		responses(map[int]string{200: "Two-factor enabled", 400: "Invalid code"})))
	doc.Paths.Set("/auth/totp/disable", pathItemPost("Disable two-factor with a current code.", "totpDisable",
		responses(map[int]string{200: "Two-factor disabled", 400: "Invalid code"})))

	bookings := &openapi3.PathItem{}
	bookings.Get = operation("List the caller's bookings.", "listBookings",
		responses(map[int]string{200: "Bookings", 401: "Not authenticated"}))
	bookings.Post = operation("Create a booking.", "createBooking",
		responses(map[int]string{201: "Booking created", 400: "Invalid input", 401: "Not authenticated"}))
	doc.Paths.Set("/bookings", bookings)

	bookingByRef := &openapi3.PathItem{}
	bookingByRef.Get = operation("Fetch one booking by reference.", "getBooking",
		responses(map[int]string{200: "Booking", 404: "Unknown reference"}))
	bookingByRef.Get.Parameters = openapi3.Parameters{refParam()}
	bookingByRef.Delete = operation("Cancel a booking.", "cancelBooking",
		responses(map[int]string{200: "Booking cancelled", 404: "Unknown reference"}))
	bookingByRef.Delete.Parameters = openapi3.Parameters{refParam()}
	doc.Paths.Set("/bookings/{reference}", bookingByRef)

	consentPath := &openapi3.PathItem{}
	consentPath.Get = operation("Read stored consent preferences.", "getConsent",
		responses(map[int]string{200: "Preferences"}))
	consentPath.Post = operation("Store consent preferences.", "setConsent",
		responses(map[int]string{200: "Preferences stored", 400: "Invalid payload"}))
	doc.Paths.Set("/consent", consentPath)

	return doc
}

func operation(summary, operationID string, resp *openapi3.Responses) *openapi3.Operation {
	return &openapi3.Operation{
		Summary:     summary,
		OperationID: operationID,
		Responses:   resp,
	}
}

func pathItemGet(summary, operationID string, resp *openapi3.Responses) *openapi3.PathItem {
	return &openapi3.PathItem{Get: operation(summary, operationID, resp)}
}

func pathItemPost(summary, operationID string, resp *openapi3.Responses) *openapi3.PathItem {
	return &openapi3.PathItem{Post: operation(summary, operationID, resp)}
}

func responses(byStatus map[int]string) *openapi3.Responses {
	resp := openapi3.NewResponses()
	for status, description := range byStatus {
		desc := description
		resp.Set(strconv.Itoa(status), &openapi3.ResponseRef{
			Value: &openapi3.Response{Description: &desc},
		})
	}
	return resp
}

func refParam() *openapi3.ParameterRef {
	return &openapi3.ParameterRef{
		Value: &openapi3.Parameter{
			Name:     "reference",
			In:       "path",
			Required: true,
			Schema:   &openapi3.SchemaRef{Value: &openapi3.Schema{Type: &openapi3.Types{"string"}}},
		},
	}
}
