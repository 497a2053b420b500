// Package harness runs viewer session scenarios end to end.
//
// A scenario builds a full session (shell.App) against a fake shop served
// by testutil.CatalogServer, drives it through host interactions and bus
// events, and then checks the resulting cart, document and event trace.
//
// # Scenario Format
//
// Scenarios are defined in YAML files with the following structure:
//
//	name: scenario_name
//	description: "What this scenario validates"
//	session_id: session-1
//	config:
//	  shop:
//	    account_id: acct-7
//	metadata:
//	  title: Spring Catalog
//	catalog:
//	  products:
//	    - sku: A1
//	      name: Lamp
//	      price: "10.00"
//	      image: a1.png
//	  checkout:
//	    status: 200
//	    body: https://shop.example/pay
//	steps:
//	  - document: catalog.pdf
//	  - publish: productdetails
//	    payload: { sku: A1 }
//	  - click: productAddToCart
//	  - set_count: { sku: A1, count: 3 }
//	  - checkout: true
//	assertions:
//	  - type: cart_count
//	    sku: A1
//	    count: 3
//	  - type: trace_order
//	    names: [productdetails, addtocart]
//
// The loop runs until idle after every step, so each step observes the
// complete effect of the previous one, including lookups, image loads and
// checkout submissions.
//
// # Step Types
//
//   - document: starts a document with the scenario metadata
//   - publish: dispatches a bus event; externally accepted names go
//     through shell.App.Publish
//   - click: clicks the element with the given id
//   - key: dispatches a window keydown
//   - set_count: types a count into a cart item's count input
//   - remove: clicks a cart item's remove control
//   - checkout: clicks the cart checkout control
//   - reset: empties the cart
//
// # Assertion Types
//
//   - cart_count, cart_len, cart_total: cart contents
//   - overlay_active: the active overlay, or none
//   - node_text, node_class, node_attr: element state by id
//   - host_event: a host event was dispatched at a target
//   - trace_order, trace_count: bus events recorded by the journal
//   - checkout_submitted: checkout forms received by the shop
package harness
