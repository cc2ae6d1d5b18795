// Package accounts reads provider credentials from the accounts CSV and
// selects the account that is active for a run.
package accounts

import (
	"errors"
	"fmt"
	"strings"

	"codeberg.org/snonux/csvtrans/internal/batch"
)

// ProviderKind identifies a translation provider.
type ProviderKind int

const (
	// KindNone means a stage has no provider and passes values through.
	KindNone ProviderKind = iota
	KindGoogle
	KindBing
)

func (k ProviderKind) String() string {
	switch k {
	case KindGoogle:
		return "google"
	case KindBing:
		return "bing"
	default:
		return "none"
	}
}

// Account holds the credentials of one provider account.
type Account struct {
	Username string
	Password string
	Kind     ProviderKind

	// Google
	APIKey string

	// Bing
	ClientID     string
	ClientSecret string
}

// Set is the active account per provider. A nil entry means no account of
// that kind was listed.
type Set struct {
	Google *Account
	Bing   *Account
}

// ErrAccounts wraps every failure to read or interpret the accounts file.
var ErrAccounts = errors.New("accounts")

// Read loads the accounts CSV and selects the first account of each kind.
func Read(filename string) (Set, error) {
	rows, err := batch.ReadRows(filename)
	if err != nil {
		return Set{}, fmt.Errorf("%w: %w", ErrAccounts, err)
	}
	return Select(rows)
}

// Select parses account rows. Row 0 is a header and is skipped. A row whose
// third field is "google" carries an API key in field 4; any other kind is a
// Bing account with client id and secret in fields 4 and 5.
func Select(rows []batch.Row) (Set, error) {
	var set Set
	for i, row := range rows {
		if i == 0 {
			continue
		}

		account, err := parseRow(row)
		if err != nil {
			return Set{}, fmt.Errorf("%w: row %d: %w", ErrAccounts, i+1, err)
		}

		switch account.Kind {
		case KindGoogle:
			if set.Google == nil {
				set.Google = account
			}
		case KindBing:
			if set.Bing == nil {
				set.Bing = account
			}
		}
	}
	return set, nil
}

func parseRow(row batch.Row) (*Account, error) {
	if len(row) < 4 {
		return nil, fmt.Errorf("expected at least 4 fields, got %d", len(row))
	}

	account := &Account{
		Username: strings.TrimSpace(row[0]),
		Password: strings.TrimSpace(row[1]),
	}

	if strings.TrimSpace(row[2]) == "google" {
		account.Kind = KindGoogle
		account.APIKey = strings.TrimSpace(row[3])
		return account, nil
	}

	if len(row) < 5 {
		return nil, fmt.Errorf("bing account needs client id and secret, got %d fields", len(row))
	}
	account.Kind = KindBing
	account.ClientID = strings.TrimSpace(row[3])
	account.ClientSecret = strings.TrimSpace(row[4])
	return account, nil
}
