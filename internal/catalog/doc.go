// Package catalog implements the asynchronous product lookup workflow: a
// product identifier goes in, a structured Product (or a typed failure)
// comes out.
//
// # Lookup Contract
//
// The lookup URL template carries a [SKU] placeholder. The response is XML
// with zero or more "record" elements, each with child fields
//
//	sku, name, description, weight, price, available, image, unit
//
// The first record wins. Fields that are absent or empty stay unset; an
// empty string in a Product field always means "unset". Prices are decimal
// values normalized to two fraction digits.
//
// # Outcomes
//
//   - Found: Fetch returns the product
//   - LOOKUP_NOT_FOUND: the response parsed but held no record
//   - LOOKUP_TRANSPORT_ERROR: non-2xx status, transport failure, or a body
//     that is not XML
//
// Both failures are handled identically by the popup.
package catalog
