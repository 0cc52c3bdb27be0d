package inbound

type TOTPAuthenticateRequest struct {
	Key     string `json:"key"`
	KeyType string `json:"key_type"`
	Code    string `json:"code"`
}

type TOTPAuthenticateResponse struct {
	Accepted bool `json:"accepted"`
}

func (TOTPAuthenticateResponse) Message() string {
	return "authenticated"
}
