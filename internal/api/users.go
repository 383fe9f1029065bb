package api

import (
	"net/http"

	goaway "github.com/TwiN/go-away"
	"github.com/gorilla/mux"
	"golang.org/x/crypto/bcrypt"

	elerrs "github.com/eventlink/eventlink/internal/errors"
	"github.com/eventlink/eventlink/internal/eventlink"
	"github.com/eventlink/eventlink/internal/serverutil"
)

type userResponse struct {
	ID       string         `json:"id"`
	Username string         `json:"username"`
	Email    string         `json:"email"`
	Role     eventlink.Role `json:"role"`
}

func toUserResponse(usr eventlink.User) userResponse {
	return userResponse{
		ID:       usr.ID,
		Username: usr.Username,
		Email:    usr.Email,
		Role:     usr.Role,
	}
}

func (s *Server) getUsers(w http.ResponseWriter, r *http.Request) error {
	users, err := s.repo.AllUsers(r.Context())
	if err != nil {
		return err
	}

	resp := make([]userResponse, 0, len(users))
	for _, usr := range users {
		resp = append(resp, toUserResponse(usr))
	}

	return serverutil.WriteJSON(w, http.StatusOK, resp)
}

type userRequest struct {
	Username string         `json:"username"`
	Password string         `json:"password"`
	Email    string         `json:"email"`
	Role     eventlink.Role `json:"role"`
}

func (ur userRequest) Validate() error {
	var details []elerrs.Detail
	if ur.Username == "" {
		details = append(details, elerrs.Detail{Field: "username", Error: "is required"})
	}
	if ur.Email == "" {
		details = append(details, elerrs.Detail{Field: "email", Error: "is required"})
	}
	// Usernames show up all over the admin screens.
	if goaway.IsProfane(ur.Username) {
		details = append(details, elerrs.Detail{Field: "username", Error: "profanity detected"})
	}
	if len(details) > 0 {
		return elerrs.E("invalid user", details, http.StatusUnprocessableEntity)
	}

	return nil
}

func (s *Server) postUser(w http.ResponseWriter, r *http.Request) error {
	body, err := serverutil.DecodeValid[userRequest](r.Body)
	if err != nil {
		return err
	}
	if body.Password == "" {
		return elerrs.E("password is required", http.StatusBadRequest)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(body.Password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	usr, err := s.repo.InsertUser(r.Context(), eventlink.User{
		Username: body.Username,
		Password: string(hashed),
		Email:    body.Email,
		Role:     body.Role,
	})
	if err != nil {
		return err
	}

	return serverutil.WriteJSON(w, http.StatusCreated, toUserResponse(usr))
}

func (s *Server) putUser(w http.ResponseWriter, r *http.Request) error {
	body, err := serverutil.DecodeValid[userRequest](r.Body)
	if err != nil {
		return err
	}

	usr, err := s.repo.User(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		return err
	}

	usr.Username = body.Username
	usr.Email = body.Email
	if body.Role != "" {
		usr.Role = body.Role
	}
	if body.Password != "" {
		hashed, err := bcrypt.GenerateFromPassword([]byte(body.Password), bcrypt.DefaultCost)
		if err != nil {
			return err
		}
		usr.Password = string(hashed)
	}

	if err := s.repo.UpdateUser(r.Context(), usr); err != nil {
		return err
	}

	return serverutil.WriteJSON(w, http.StatusOK, toUserResponse(usr))
}

func (s *Server) deleteUser(w http.ResponseWriter, r *http.Request) error {
	if err := s.repo.DeleteUser(r.Context(), mux.Vars(r)["id"]); err != nil {
		return err
	}

	return serverutil.WriteJSON(w, http.StatusOK, struct{}{})
}
