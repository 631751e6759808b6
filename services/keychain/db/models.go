package db

type Token struct {
	Namespace    string
	ID           string
	AccessToken  string
	RefreshToken string
	TokenID      string
	ExpiresAt    int64
	UpdatedAt    int64
}

type RefreshAlert struct {
	Namespace string
	ID        string
	AlertedAt int64
}
