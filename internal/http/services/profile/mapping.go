package profile

import (
	"strings"

	dto "github.com/dropDatabas3/userprofile/internal/http/dto/profile"
	"github.com/dropDatabas3/userprofile/internal/identity"
)

// fallbackName se usa cuando no hay nombre ni local-part de email.
const fallbackName = "User"

// DisplayName deriva el nombre visible: nombre guardado, si no la parte local
// del email (antes del primer '@'), si no "User". Nunca devuelve "".
func DisplayName(name, email string) string {
	if n := strings.TrimSpace(name); n != "" {
		return n
	}
	local, _, _ := strings.Cut(email, "@")
	if local = strings.TrimSpace(local); local != "" {
		return local
	}
	return fallbackName
}

// ToResult normaliza el usuario remoto al shape que consume la app.
func ToResult(u identity.RemoteUser) *dto.ProfileResult {
	return &dto.ProfileResult{
		ID:        u.ID,
		Email:     u.Email,
		Name:      DisplayName(u.Name, u.Email),
		AvatarURL: u.Avatar(),
	}
}
