package ports

import "context"

// Locker section critique par clé (un client du carnet, une grille).
// Acquire bloque au plus jusqu'à l'échéance du contexte; renvoie domain.ErrLockNotObtained
// si la clé reste prise. release doit être appelé exactement une fois.
type Locker interface {
	Acquire(ctx context.Context, key string) (release func(), err error)
}
