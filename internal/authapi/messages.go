// Package authapi is the wire contract of the credkeeper gRPC service:
// request and response messages, a JSON codec, and the service descriptor
// with its client stub.
package authapi

// RegisterRequest asks to create a credential.
type RegisterRequest struct {
	Identity string `json:"identity"`
	Password string `json:"password"`
}

// LoginRequest asks for a token for an existing credential.
type LoginRequest struct {
	Identity string `json:"identity"`
	Password string `json:"password"`
}

// AuthResponse carries the identity and a freshly issued token.
type AuthResponse struct {
	Identity string `json:"identity"`
	Token    string `json:"token"`
}

// ValidateRequest carries a token to check.
type ValidateRequest struct {
	Token string `json:"token"`
}

// ValidateResponse reports the outcome of a token check.
type ValidateResponse struct {
	Valid bool `json:"valid"`
}

func (r *RegisterRequest) GetIdentity() string {
	if r == nil {
		return ""
	}
	return r.Identity
}

func (r *RegisterRequest) GetPassword() string {
	if r == nil {
		return ""
	}
	return r.Password
}

func (r *LoginRequest) GetIdentity() string {
	if r == nil {
		return ""
	}
	return r.Identity
}

func (r *LoginRequest) GetPassword() string {
	if r == nil {
		return ""
	}
	return r.Password
}

func (r *AuthResponse) GetToken() string {
	if r == nil {
		return ""
	}
	return r.Token
}

func (r *ValidateRequest) GetToken() string {
	if r == nil {
		return ""
	}
	return r.Token
}

func (r *ValidateResponse) GetValid() bool {
	return r != nil && r.Valid
}
