package client

import "io"

// Document is an identity document attached to a registration.
type Document struct {
	Filename string
	Content  io.Reader
}

type RegisterParams struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
	Birthday  string
	Phone     string
	ValidID   *Document // optional
}

type Profile struct {
	ID          uint   `json:"id"`
	Email       string `json:"email"`
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	Birthday    string `json:"birthday"`
	Phone       string `json:"phone"`
	ValidIDPath string `json:"validIDPath"`
}

type LoginResult struct {
	Message string  `json:"message"`
	User    Profile `json:"user"`
	Token   string  `json:"token"`
}

type messageResponse struct {
	Message string `json:"message"`
}

type profileResponse struct {
	User Profile `json:"user"`
}
