package http

import (
	"bytes"
	"context"
	"errors"
	"html/template"
	"net/http"
	"net/url"
	"strings"

	"fintrack/internal/auth"
	"fintrack/internal/core"
	"fintrack/internal/log"
)

const (
	layoutTemplate = "layout.html"
	sessionCookie  = "fintrack_session"
	flashCookie    = "fintrack_flash"
)

type ctxKey int

const sessionKey ctxKey = iota

var templateFuncs = template.FuncMap{
	"sign": func(m core.Money) string {
		if m.Cents < 0 {
			return "negative"
		}
		return "positive"
	},
}

// Flash is a one-shot message shown on the next rendered page.
type Flash struct {
	Kind    string // success, info or danger
	Message string
}

// view is what every template receives.
type view struct {
	Title string
	User  *auth.Session
	Flash *Flash
	Error string
	Data  any
}

func sessionFrom(ctx context.Context) (auth.Session, bool) {
	sess, ok := ctx.Value(sessionKey).(auth.Session)
	return sess, ok
}

// loadSession attaches the caller's session, if any, to the request.
func (s *Server) loadSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c, err := r.Cookie(sessionCookie)
		if err == nil && c.Value != "" {
			if sess, err := s.auth.Resolve(c.Value); err == nil {
				ctx := context.WithValue(r.Context(), sessionKey, sess)
				logger := log.FromContext(ctx).With(log.FieldOwner, sess.UserID)
				r = r.WithContext(log.NewContext(ctx, logger))
			}
		}
		next.ServeHTTP(w, r)
	})
}

// requirePage sends anonymous visitors to the login form.
func (s *Server) requirePage(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := sessionFrom(r.Context()); !ok {
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) requireAPI(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := sessionFrom(r.Context()); !ok {
			JSONError(http.StatusUnauthorized, "authentication required").Write(w)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) setSessionCookie(w http.ResponseWriter, sess auth.Session) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    sess.Token,
		Path:     "/",
		Expires:  sess.ExpiresAt,
		HttpOnly: true,
		Secure:   s.cookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (s *Server) clearCookie(w http.ResponseWriter, name string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.cookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (s *Server) setFlash(w http.ResponseWriter, kind, message string) {
	http.SetCookie(w, &http.Cookie{
		Name:     flashCookie,
		Value:    url.QueryEscape(kind + "|" + message),
		Path:     "/",
		HttpOnly: true,
		Secure:   s.cookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

// popFlash reads and clears the pending flash message.
func (s *Server) popFlash(w http.ResponseWriter, r *http.Request) *Flash {
	c, err := r.Cookie(flashCookie)
	if err != nil {
		return nil
	}
	s.clearCookie(w, flashCookie)
	raw, err := url.QueryUnescape(c.Value)
	if err != nil {
		return nil
	}
	kind, msg, ok := strings.Cut(raw, "|")
	if !ok || msg == "" {
		return nil
	}
	switch kind {
	case "success", "info", "danger":
	default:
		kind = "info"
	}
	return &Flash{Kind: kind, Message: msg}
}

// render executes page into a buffer first so a template error never
// leaves a half-written response.
func (s *Server) render(w http.ResponseWriter, r *http.Request, status int, page string, v view) {
	t, ok := s.templates[page]
	if !ok {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Unknown template", "template", page)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if sess, ok := sessionFrom(r.Context()); ok {
		v.User = &sess
	}
	if v.Flash == nil {
		v.Flash = s.popFlash(w, r)
	}

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, layoutTemplate, v); err != nil {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Template execution failed",
			"template", page, log.FieldError, err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	NewResponse().Status(status).BodyHTML(buf.String()).Write(w)
}

func (s *Server) renderError(w http.ResponseWriter, r *http.Request, status int, message string) {
	if strings.HasPrefix(r.URL.Path, "/api/") {
		JSONError(status, message).Write(w)
		return
	}
	s.render(w, r, status, "error.html", view{Title: http.StatusText(status), Error: message})
}

// fail maps a service error to a response. Malformed stored data is a 422;
// anything else is logged and reported generically.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	var de *core.DataError
	if errors.As(err, &de) {
		s.renderError(w, r, http.StatusUnprocessableEntity, "Your ledger contains an invalid record: "+de.Error())
		return
	}
	if errors.Is(err, context.DeadlineExceeded) {
		s.renderError(w, r, http.StatusServiceUnavailable, "The request took too long. Please try again.")
		return
	}
	log.FromContext(r.Context()).ErrorContext(r.Context(), "Request failed",
		log.FieldPath, r.URL.Path, log.FieldError, err)
	s.renderError(w, r, http.StatusInternalServerError, "Something went wrong. Please try again.")
}

// sanitizeInput trims and removes control characters except tab and newlines.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}
