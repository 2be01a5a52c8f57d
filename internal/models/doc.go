// Package models defines the core domain models for the sales ledger.
//
// # Models
//
//   - User: a registered account holding a credential hash and a role
//   - Sale: a sale record owned by exactly one User
//   - Identity: the fixed-shape caller identity carried inside an access token
//
// # Design Principles
//
//  1. **No circular references**: relationships use ID strings, not pointers
//  2. **Roles are closed**: only RoleUser and RoleAdmin are valid
//  3. **Dates are calendar dates**: Sale.DateOfSale has no time-of-day component
package models
