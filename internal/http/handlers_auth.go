package http

import (
	"errors"
	"net/http"

	"fintrack/internal/auth"
	"fintrack/internal/core"
	"fintrack/internal/log"
)

type credentialsForm struct {
	Username string
}

func (s *Server) handleLanding(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, http.StatusOK, "landing.html", view{Title: "Personal finance tracker"})
}

func (s *Server) handleSignupForm(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, http.StatusOK, "signup.html", view{Title: "Sign up", Data: credentialsForm{}})
}

func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	if resp := ParseFormOrFail(r); resp != nil {
		resp.Write(w)
		return
	}
	username := sanitizeInput(r.PostForm.Get("username"))
	password := r.PostForm.Get("password")
	form := credentialsForm{Username: username}

	_, err := s.auth.SignUp(r.Context(), username, password)
	switch {
	case err == nil:
		s.setFlash(w, "success", "Account created. Please log in.")
		http.Redirect(w, r, "/login", http.StatusSeeOther)
	case errors.Is(err, auth.ErrUsernameTaken):
		s.render(w, r, http.StatusConflict, "signup.html",
			view{Title: "Sign up", Error: "That username already exists.", Data: form})
	case errors.Is(err, core.ErrInvalidUsername), errors.Is(err, core.ErrInvalidPassword):
		s.render(w, r, http.StatusBadRequest, "signup.html",
			view{Title: "Sign up", Error: capitalize(err.Error()) + ".", Data: form})
	default:
		s.fail(w, r, err)
	}
}

func (s *Server) handleLoginForm(w http.ResponseWriter, r *http.Request) {
	if _, ok := sessionFrom(r.Context()); ok {
		http.Redirect(w, r, "/index", http.StatusSeeOther)
		return
	}
	s.render(w, r, http.StatusOK, "login.html", view{Title: "Log in", Data: credentialsForm{}})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if resp := ParseFormOrFail(r); resp != nil {
		resp.Write(w)
		return
	}
	username := sanitizeInput(r.PostForm.Get("username"))

	sess, err := s.auth.Login(r.Context(), username, r.PostForm.Get("password"))
	if errors.Is(err, auth.ErrInvalidCredentials) {
		log.FromContext(r.Context()).InfoContext(r.Context(), "Login rejected",
			log.FieldOperation, log.OpLogin, log.FieldClientIP, s.detector.ExtractClientIP(r))
		s.render(w, r, http.StatusUnauthorized, "login.html",
			view{Title: "Log in", Error: "Wrong username or password.", Data: credentialsForm{Username: username}})
		return
	}
	if err != nil {
		s.fail(w, r, err)
		return
	}

	s.setSessionCookie(w, sess)
	http.Redirect(w, r, "/index", http.StatusSeeOther)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if sess, ok := sessionFrom(r.Context()); ok {
		s.auth.Logout(sess.Token)
	}
	s.clearCookie(w, sessionCookie)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func capitalize(s string) string {
	if s == "" || s[0] < 'a' || s[0] > 'z' {
		return s
	}
	return string(s[0]-'a'+'A') + s[1:]
}
