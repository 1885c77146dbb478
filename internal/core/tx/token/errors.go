package token

import "errors"

var (
	ErrInsufficientFunds = errors.New("token: insufficient funds")
	ErrNotFound          = errors.New("token: account not found")
	ErrAlreadyExists     = errors.New("token: account already exists")
	ErrOwnerMismatch     = errors.New("token: owner mismatch")
	ErrAuthorityMismatch = errors.New("token: authority cannot sign for account")
	ErrMintMismatch      = errors.New("token: mint mismatch")
	ErrSelfTransfer      = errors.New("token: source and destination are the same holding")
)
