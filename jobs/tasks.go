package jobs

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// QueueMaintenance carries slow, schedulable maintenance work.
	QueueMaintenance = "maintenance"

	// TaskCatalogImport runs a catalog feed import in the background.
	TaskCatalogImport = "catalog:import"
	// TaskLedgerRebalance recomputes every account balance.
	TaskLedgerRebalance = "ledger:rebalance"
	// TaskStockAudit reports stock drift without changing stock.
	TaskStockAudit = "inventory:stock-audit"
)
