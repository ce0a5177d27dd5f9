// Package models defines the core domain models for the receipt splitter.
//
// # Models
//
//   - Receipt: a scanned receipt with its items, discount lines and printed totals
//   - Item / BonusItem: single product and discount lines
//   - Verification: which printed totals agree with the parsed lines
//   - ShareAssignment: how many shares each participant holds per line
//   - Settlement: the per-participant amounts computed from a receipt
//   - Transfer: a payment owed to whoever paid at the register
//
// Participants are identified by name strings; there are no user accounts.
// Amounts use money.Money and are exact to the cent.
package models
