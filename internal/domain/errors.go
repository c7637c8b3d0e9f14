package domain

import "errors"

// Erreurs de domaine (sans dépendance externe).
var (
	ErrNotFound               = errors.New("ressource introuvable")
	ErrInvalidInput           = errors.New("entrée invalide")
	ErrDuplicate              = errors.New("ressource en double")
	ErrUnauthorized           = errors.New("non autorisé")
	ErrForbidden              = errors.New("accès refusé")
	ErrConflict               = errors.New("conflit avec l'état actuel")
	ErrInvalidStateTransition = errors.New("transition d'état non autorisée")
	ErrLockNotObtained        = errors.New("ressource verrouillée par une autre opération")

	// Prix
	ErrMissingReferencePrice = errors.New("prix de référence manquant")

	// Carnet de crédit
	ErrCreditLimitExceeded      = errors.New("plafond de crédit dépassé")
	ErrOverpaymentRejected      = errors.New("paiement supérieur au solde dû")
	ErrInvalidTransactionAmount = errors.New("montant de transaction invalide")
	ErrInconsistentLineItems    = errors.New("les lignes ne correspondent pas au montant")
)
