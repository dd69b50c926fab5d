package settings

import (
	"fmt"

	"github.com/kbukum/audiodesk/encryption"
)

// sealSecrets encrypts the string values of sensitive keys in place.
func sealSecrets(enc encryption.Encryptor, s Settings) error {
	if enc == nil {
		return nil
	}
	for k, v := range s {
		str, ok := v.(string)
		if !ok || str == "" || !IsSensitiveKey(k) {
			continue
		}
		sealed, err := enc.Encrypt(str)
		if err != nil {
			return fmt.Errorf("encrypt setting %q: %w", k, err)
		}
		s[k] = sealed
	}
	return nil
}

// openSecrets reverses sealSecrets.
func openSecrets(enc encryption.Encryptor, s Settings) error {
	if enc == nil {
		return nil
	}
	for k, v := range s {
		str, ok := v.(string)
		if !ok || str == "" || !IsSensitiveKey(k) {
			continue
		}
		plain, err := enc.Decrypt(str)
		if err != nil {
			return fmt.Errorf("decrypt setting %q: %w", k, err)
		}
		s[k] = plain
	}
	return nil
}
