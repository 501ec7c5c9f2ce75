// Package profile contiene los DTOs del endpoint de perfil.
package profile

// ProfileResponse es el JSON que consume la app móvil.
// Todos los campos se serializan siempre (sin omitempty).
type ProfileResponse struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	Name      string `json:"name"`
	AvatarURL string `json:"avatarUrl"`
}

// ProfileRequest es la entrada ya extraída del request HTTP.
type ProfileRequest struct {
	UserID string
	// APIKey viene del header x-appwrite-key; vacío = usar la key configurada.
	APIKey string
}

// ProfileResult es el resultado interno de ProfileService.
type ProfileResult struct {
	ID        string
	Email     string
	Name      string
	AvatarURL string
}

// ToResponse convierte el resultado interno en la respuesta pública.
func (r ProfileResult) ToResponse() ProfileResponse {
	return ProfileResponse{
		ID:        r.ID,
		Email:     r.Email,
		Name:      r.Name,
		AvatarURL: r.AvatarURL,
	}
}
