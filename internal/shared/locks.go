package shared

// CatalogImportLockKey is the redis key guarding catalog imports.
const CatalogImportLockKey = "inventory:catalog:import:lock"

// CatalogExportVersionKey holds the version counter bumped after every import.
const CatalogExportVersionKey = "inventory:catalog:export:version"
