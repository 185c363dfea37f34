package domain

import "time"

// Admin is a back-office principal. Passwords are stored as encrypted
// blobs (IV + ciphertext, base64), never as plaintext.
type Admin struct {
	ID             int64
	Name           string
	NameNormalized string // uppercase fold of Name, kept for lookups
	Email          string // unique among admins
	Password       string // encrypted blob
	PhoneNumber    string
	DateCreated    time.Time
}

// Client is a customer principal. Clients authenticate through their own
// identity space: a client email never matches an admin record.
type Client struct {
	ID             int64
	Name           string
	NameNormalized string
	Email          string // unique among clients
	Password       string // encrypted blob
	PhoneNumber    string
	DateCreated    time.Time
}

// AdminRepository defines data access for admins
type AdminRepository interface {
	Create(admin *Admin) error
	GetByID(id int64) (*Admin, error)
	GetByEmail(email string) (*Admin, error)
	EmailExists(email string) (bool, error)
}

// ClientRepository defines data access for clients
type ClientRepository interface {
	Create(client *Client) error
	GetByID(id int64) (*Client, error)
	GetByEmail(email string) (*Client, error)
	EmailExists(email string) (bool, error)
}
