// Package popup implements the product details and publisher overlays.
//
// Both popups open through the overlay manager and then wait for two
// conditions before loading content: the open transition and the one-time
// document-available latch. The wait is a loop.Join, so it resolves exactly
// once whichever condition arrives first.
package popup
