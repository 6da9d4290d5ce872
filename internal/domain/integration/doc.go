// Package integration contains the marketplace integration bounded context.
// It covers pushing inventory stock levels to external marketplaces
// (Wildberries, Ozon) and the bookkeeping around it.
//
// Key concepts:
//   - Credential: per-user, per-marketplace API access record
//   - SkuMapping: maps an internal SKU to the marketplace SKU with a cached quantity snapshot
//   - InventoryItem: read-only view of catalog stock per internal SKU
//   - MarketplaceClient: port for batched stock pushes and connection checks
//   - SyncLog: bounded newest-first history of sync passes
//
// Design Pattern: Ports & Adapters
//   - Ports (interfaces) are defined here in the domain layer
//   - Adapters (implementations) are in the infrastructure layer
package integration
