// Package models defines the core domain models for the receipt API.
//
// # Models
//
//   - User: a registered account that owns receipts
//   - Product: a catalog entry keyed by the (name, price) pair
//   - Receipt: an immutable purchase record with payment info
//   - LineItem: a receipt/product association with a quantity
//
// # Design Principles
//
//  1. **Immutability**: receipts and products are never updated after
//     creation; there is no edit or void path.
//  2. **Catalog identity**: a product is identified by (name, price),
//     not by name alone — the same name at a different price is a
//     distinct catalog entry.
//  3. **Avoid circular references**: relationships use ID fields, not
//     pointers back to the owning struct.
package models
