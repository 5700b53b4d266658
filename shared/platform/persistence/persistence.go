package persistence

import (
	"context"
)

// Slot es un hueco clave-valor que guarda una única secuencia serializada.
// Se lee y se escribe completo; no hay escrituras parciales.
type Slot interface {
	// Read devuelve (nil, false, nil) si el hueco todavía no existe.
	Read(ctx context.Context) (data []byte, found bool, err error)

	// Write sobrescribe el contenido completo del hueco.
	Write(ctx context.Context, data []byte) error
}
