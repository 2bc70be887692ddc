package anvil_test

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/anvilco/go-anvil/pkg/anvil"
	"github.com/anvilco/go-anvil/pkg/api"
)

func ExampleNew() {
	client, err := anvil.New(os.Getenv("ANVIL_API_KEY"),
		anvil.WithEnvironment(api.EnvironmentProduction),
	)
	if err != nil {
		log.Fatal(err)
	}
	_ = client
}

func ExampleClient_FillPDF() {
	client, err := anvil.New(os.Getenv("ANVIL_API_KEY"))
	if err != nil {
		log.Fatal(err)
	}

	pdf, err := client.FillPDF(context.Background(), "templateEid", &anvil.FillPDFPayload{
		Title: "Invoice",
		Data:  map[string]any{"name": "Jane Doe"},
	})
	if err != nil {
		log.Fatal(err)
	}

	if err := os.WriteFile("out.pdf", pdf.Data, 0o644); err != nil {
		log.Fatal(err)
	}
}

func ExampleClient_CreateEtchPacket() {
	client, err := anvil.New(os.Getenv("ANVIL_API_KEY"))
	if err != nil {
		log.Fatal(err)
	}

	packet, err := client.CreateEtchPacket(context.Background(), &anvil.CreateEtchPacketPayload{
		Name: "Employment Contract",
		Files: []anvil.EtchFile{
			{ID: "contract", CastEid: "castEid"},
		},
		Signers: []anvil.EtchSigner{
			{
				Name:  "Jane Doe",
				Email: "jane@example.com",
				Fields: []anvil.SignerField{
					{FileID: "contract", FieldID: "signature"},
				},
			},
		},
	})
	switch {
	case anvil.IsValidationError(err):
		log.Fatalf("bad input, nothing was sent: %v", err)
	case err != nil:
		log.Fatal(err)
	}

	fmt.Println(packet.DetailsURL)
}

func ExampleClient_ListEtchPackets() {
	client, err := anvil.New(os.Getenv("ANVIL_API_KEY"))
	if err != nil {
		log.Fatal(err)
	}

	ctx := context.Background()
	page, err := client.ListEtchPackets(ctx, anvil.ListEtchPacketsOptions{Limit: 50})
	for page != nil && err == nil {
		for _, p := range page.Packets {
			fmt.Println(p.Eid, p.Name)
		}
		page, err = client.NextEtchPackets(ctx, page)
	}
	if err != nil {
		log.Fatal(err)
	}
}
