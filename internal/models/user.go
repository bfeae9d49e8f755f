package models

import "strings"

// User is the authenticated identity held by the session
type User struct {
	ID       int64   `json:"id"`
	Email    string  `json:"email"`
	Username string  `json:"username"`
	Password string  `json:"password"`
	Name     Name    `json:"name"`
	Address  Address `json:"address"`
	Phone    string  `json:"phone"`
}

type Name struct {
	Firstname string `json:"firstname"`
	Lastname  string `json:"lastname"`
}

type Address struct {
	City        string      `json:"city"`
	Street      string      `json:"street"`
	Number      int         `json:"number"`
	Zipcode     string      `json:"zipcode"`
	Geolocation Geolocation `json:"geolocation"`
}

type Geolocation struct {
	Lat  string `json:"lat"`
	Long string `json:"long"`
}

// FullName joins first and last name.
func (u User) FullName() string {
	return strings.TrimSpace(u.Name.Firstname + " " + u.Name.Lastname)
}
