package ports

// InventoryMetrics puerto de métricas del motor de ajustes.
type InventoryMetrics interface {
	// AdjustmentApplied cuenta un ajuste confirmado.
	AdjustmentApplied(movementType string)
	// AdjustmentRejected cuenta un ajuste rechazado; reason es el código de error (VALIDATION, NOT_FOUND...).
	AdjustmentRejected(movementType, reason string)
	// ConflictDetected cuenta un intento abortado por conflicto de concurrencia.
	ConflictDetected()
}
