// Package cart implements the shopping cart aggregate and checkout.
//
// The cart is a map from normalized SKU to item plus the insertion order of
// those SKUs. Every mutation notifies emptiness, re-renders the item list
// newest first and recomputes the total, in that order.
//
// Thread-safety: a Cart is owned by the loop. All methods must run on loop
// tasks; checkout submission and order publishing run off-loop through
// loop.Await and resume on the loop.
package cart
