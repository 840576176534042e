package stellar

import (
	"fmt"

	"github.com/stellar/go/strkey"
)

// ValidateAccountAddress checks that address is a G... account id
func ValidateAccountAddress(address string) error {
	if address == "" {
		return fmt.Errorf("stellar address is required")
	}
	if !strkey.IsValidEd25519PublicKey(address) {
		return fmt.Errorf("invalid stellar address: %s", address)
	}
	return nil
}
