package consent

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/rideway/rideway/config"
	"github.com/rideway/rideway/services/logging"
	"go.uber.org/zap"
)

var ErrMalformedCookie = errors.New("malformed consent cookie")

// Service encodes consent preferences into a cookie and fans out changes to
// in-process subscribers, so features gated on a category can react without
// polling.
type Service struct {
	config *config.Config
	logger *logging.Service

	mu          sync.RWMutex
	subscribers []chan Preferences
}

func NewService(cfg *config.Config, logger *logging.Service) *Service {
	return &Service{
		config: cfg,
		logger: logger,
	}
}

// FromRequest reads the visitor's stored preferences. A missing or unreadable
// cookie yields the undecided default rather than an error surfaced to the
// caller.
func (s *Service) FromRequest(r *http.Request) Preferences {
	cookie, err := r.Cookie(s.config.Consent.CookieName)
	if err != nil {
		return DefaultPreferences()
	}

	prefs, err := s.Decode(cookie.Value)
	if err != nil {
		if s.logger != nil {
			s.logger.Warn("dropping unreadable consent cookie", zap.Error(err))
		}
		return DefaultPreferences()
	}

	return prefs
}

// Set normalises the preferences, writes the cookie, and notifies
// subscribers. Necessary is forced on regardless of input.
func (s *Service) Set(w http.ResponseWriter, prefs Preferences) Preferences {
	prefs.Necessary = true
	if prefs.DecidedAt.IsZero() {
		prefs.DecidedAt = time.Now()
	}

	http.SetCookie(w, s.Cookie(prefs))
	s.broadcast(prefs)

	return prefs
}

func (s *Service) Cookie(prefs Preferences) *http.Cookie {
	return &http.Cookie{
		Name:     s.config.Consent.CookieName,
		Value:    s.Encode(prefs),
		Path:     "/",
		Domain:   s.config.Consent.CookieDomain,
		MaxAge:   int(s.config.Consent.MaxAge.Seconds()),
		HttpOnly: false,
		SameSite: http.SameSiteLaxMode,
	}
}

func (s *Service) Encode(prefs Preferences) string {
	data, _ := json.Marshal(prefs)
	return base64.RawURLEncoding.EncodeToString(data)
}

func (s *Service) Decode(value string) (Preferences, error) {
	data, err := base64.RawURLEncoding.DecodeString(value)
	if err != nil {
		return DefaultPreferences(), ErrMalformedCookie
	}

	var prefs Preferences
	if err := json.Unmarshal(data, &prefs); err != nil {
		return DefaultPreferences(), ErrMalformedCookie
	}

	prefs.Necessary = true
	return prefs, nil
}

// Subscribe returns a channel that receives every consent change for the
// lifetime of the process. Slow subscribers miss updates instead of blocking
// the writer.
func (s *Service) Subscribe() <-chan Preferences {
	ch := make(chan Preferences, 8)

	s.mu.Lock()
	s.subscribers = append(s.subscribers, ch)
	s.mu.Unlock()

	return ch
}

func (s *Service) broadcast(prefs Preferences) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, ch := range s.subscribers {
		select {
		case ch <- prefs:
		default:
		}
	}
}
