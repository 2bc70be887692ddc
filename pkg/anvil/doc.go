// Package anvil provides a typed client for the Anvil document and
// e-signature API.
//
// The client wraps the low-level transport (pkg/api) with a cleaner,
// developer-friendly interface that handles common concerns like:
//   - Payload validation before any network call
//   - GraphQL envelope unwrapping and error translation
//   - Cursor pagination with a no-progress guard
//   - File uploads (multipart or base64) chosen per operation
//   - Type-safe error handling
//
// # Basic Usage
//
// Create a client and fill a PDF template:
//
//	client, err := anvil.New(os.Getenv("ANVIL_API_KEY"),
//	    anvil.WithEnvironment(api.EnvironmentProduction),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	pdf, err := client.FillPDF(ctx, "templateEid", &anvil.FillPDFPayload{
//	    Title: "Invoice",
//	    Data:  map[string]any{"name": "Jane Doe"},
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	os.WriteFile("out.pdf", pdf.Data, 0o644)
//
// # Error Handling
//
// Failures carry a fixed taxonomy with predicate helpers:
//
//	packet, err := client.CreateEtchPacket(ctx, payload)
//	if err != nil {
//	    switch {
//	    case anvil.IsValidationError(err):
//	        // bad input, nothing was sent
//	    case anvil.IsRateLimited(err):
//	        // over the request ceiling
//	    case anvil.IsNotFound(err):
//	        // referenced template or signer does not exist
//	    default:
//	        // transport failure or unknown API error
//	    }
//	}
//
// # Pagination
//
// List operations return one page at a time; the caller replays with the
// returned cursor and can never loop on a stalled cursor:
//
//	page, err := client.ListEtchPackets(ctx, anvil.ListEtchPacketsOptions{Limit: 50})
//	for page != nil && err == nil {
//	    for _, p := range page.Packets {
//	        fmt.Println(p.Eid, p.Name)
//	    }
//	    page, err = client.NextEtchPackets(ctx, page)
//	}
package anvil

// Version is the client library version, reported in the User-Agent.
const Version = "0.4.0"
