package validation

import "fmt"

// maxPasswordBytes matches the bcrypt input limit; longer passwords would be
// rejected at hash time.
const maxPasswordBytes = 72

// ValidatePassword checks password strength. Length is measured in bytes,
// matching what gets hashed.
func ValidatePassword(password string) error {
	if len(password) < 8 {
		return fmt.Errorf("a senha deve ter pelo menos 8 caracteres")
	}
	if len(password) > maxPasswordBytes {
		return fmt.Errorf("a senha deve ter no máximo 72 caracteres")
	}
	if entirelyNumeric(password) {
		return fmt.Errorf("a senha não pode ser inteiramente numérica")
	}
	return nil
}
