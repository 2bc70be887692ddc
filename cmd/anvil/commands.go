package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/anvilco/go-anvil/pkg/anvil"
)

// Fill PDF command
var fillPDFCmd = &cobra.Command{
	Use:   "fill-pdf TEMPLATE_EID",
	Short: "Fill a PDF template",
	Long: `Fills an existing PDF template with the payload read from --in
(or stdin) and writes the rendered PDF to --out (or stdout).

Example:
  anvil fill-pdf tmpl123 --in payload.json --out filled.pdf`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		in, _ := cmd.Flags().GetString("in")
		out, _ := cmd.Flags().GetString("out")
		version, _ := cmd.Flags().GetInt("version")

		data, err := readInput(in)
		if err != nil {
			return err
		}
		var payload anvil.FillPDFPayload
		if err := decodeInput(data, &payload); err != nil {
			return err
		}
		payload.VersionNumber = version

		c, err := newClient()
		if err != nil {
			return err
		}

		ctx, cancel := commandContext()
		defer cancel()

		pdf, err := c.FillPDF(ctx, args[0], &payload)
		if err != nil {
			return fmt.Errorf("fill failed: %w", err)
		}
		return writeDownload(pdf, out)
	},
}

func init() {
	fillPDFCmd.Flags().String("in", "", "Payload JSON file (default: stdin)")
	fillPDFCmd.Flags().String("out", "", "Output PDF file (default: stdout)")
	fillPDFCmd.Flags().Int("version", 0, "Template version number (-1 latest draft, -2 latest published)")
}

// Generate PDF command
var generatePDFCmd = &cobra.Command{
	Use:   "generate-pdf",
	Short: "Generate a PDF from markdown or HTML",
	Long: `Renders a new PDF from the payload read from --in (or stdin) and
writes it to --out (or stdout).`,
	RunE: func(cmd *cobra.Command, args []string) error {
		in, _ := cmd.Flags().GetString("in")
		out, _ := cmd.Flags().GetString("out")

		data, err := readInput(in)
		if err != nil {
			return err
		}
		var payload anvil.GeneratePDFPayload
		if err := decodeInput(data, &payload); err != nil {
			return err
		}

		c, err := newClient()
		if err != nil {
			return err
		}

		ctx, cancel := commandContext()
		defer cancel()

		pdf, err := c.GeneratePDF(ctx, &payload)
		if err != nil {
			return fmt.Errorf("generate failed: %w", err)
		}
		return writeDownload(pdf, out)
	},
}

func init() {
	generatePDFCmd.Flags().String("in", "", "Payload JSON file (default: stdin)")
	generatePDFCmd.Flags().String("out", "", "Output PDF file (default: stdout)")
}

// Current user command
var currentUserCmd = &cobra.Command{
	Use:   "current-user",
	Short: "Show the account owning the API key",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newClient()
		if err != nil {
			return err
		}

		ctx, cancel := commandContext()
		defer cancel()

		user, err := c.GetCurrentUser(ctx)
		if err != nil {
			return fmt.Errorf("failed to get current user: %w", err)
		}

		if jsonOutput {
			return outputJSON(user)
		}

		fmt.Printf("Name: %s\n", user.Name)
		fmt.Printf("Email: %s\n", user.Email)
		fmt.Printf("Eid: %s\n", user.Eid)
		if user.Role != "" {
			fmt.Printf("Role: %s\n", user.Role)
		}
		for _, org := range user.Organizations {
			fmt.Printf("\nOrganization: %s (%s)\n", org.Name, org.Eid)
			for _, cast := range org.Casts {
				fmt.Printf("  Cast: %s (%s)\n", cast.Title, cast.Eid)
			}
		}
		return nil
	},
}

// Cast command group
var castCmd = &cobra.Command{
	Use:   "cast",
	Short: "Inspect PDF templates",
}

var castGetCmd = &cobra.Command{
	Use:   "get EID",
	Short: "Get one template",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		version, _ := cmd.Flags().GetInt("version")

		c, err := newClient()
		if err != nil {
			return err
		}

		ctx, cancel := commandContext()
		defer cancel()

		var opts *anvil.GetCastOptions
		if version != 0 {
			opts = &anvil.GetCastOptions{VersionNumber: version}
		}

		cast, err := c.GetCast(ctx, args[0], opts)
		if err != nil {
			return fmt.Errorf("failed to get cast: %w", err)
		}

		if jsonOutput {
			return outputJSON(cast)
		}

		fmt.Printf("Eid: %s\n", cast.Eid)
		fmt.Printf("Title: %s\n", cast.Title)
		if len(cast.FieldInfo) > 0 {
			fmt.Printf("Fields: %s\n", string(cast.FieldInfo))
		}
		return nil
	},
}

var castListCmd = &cobra.Command{
	Use:   "list",
	Short: "List templates",
	RunE: func(cmd *cobra.Command, args []string) error {
		showAll, _ := cmd.Flags().GetBool("all")

		c, err := newClient()
		if err != nil {
			return err
		}

		ctx, cancel := commandContext()
		defer cancel()

		casts, err := c.GetCasts(ctx, showAll)
		if err != nil {
			return fmt.Errorf("failed to list casts: %w", err)
		}

		if jsonOutput {
			return outputJSON(map[string]any{"casts": casts})
		}

		if len(casts) == 0 {
			fmt.Println("No casts found")
			return nil
		}
		fmt.Printf("Casts (%d):\n", len(casts))
		for _, cast := range casts {
			fmt.Printf("  %s  %s\n", cast.Eid, cast.Title)
		}
		return nil
	},
}

func init() {
	castGetCmd.Flags().Int("version", 0, "Template version number")
	castListCmd.Flags().Bool("all", false, "Include non-template casts")
	castCmd.AddCommand(castGetCmd)
	castCmd.AddCommand(castListCmd)
}

// Weld command group
var weldCmd = &cobra.Command{
	Use:   "weld",
	Short: "Inspect workflows",
}

var weldGetCmd = &cobra.Command{
	Use:   "get EID",
	Short: "Get one workflow",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newClient()
		if err != nil {
			return err
		}

		ctx, cancel := commandContext()
		defer cancel()

		weld, err := c.GetWeld(ctx, args[0])
		if err != nil {
			return fmt.Errorf("failed to get weld: %w", err)
		}

		if jsonOutput {
			return outputJSON(weld)
		}

		fmt.Printf("Eid: %s\n", weld.Eid)
		fmt.Printf("Slug: %s\n", weld.Slug)
		fmt.Printf("Name: %s\n", weld.Name)
		for _, forge := range weld.Forges {
			fmt.Printf("  Forge: %s (%s)\n", forge.Name, forge.Eid)
		}
		return nil
	},
}

var weldListCmd = &cobra.Command{
	Use:   "list",
	Short: "List workflows",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newClient()
		if err != nil {
			return err
		}

		ctx, cancel := commandContext()
		defer cancel()

		welds, err := c.GetWelds(ctx)
		if err != nil {
			return fmt.Errorf("failed to list welds: %w", err)
		}

		if jsonOutput {
			return outputJSON(map[string]any{"welds": welds})
		}

		if len(welds) == 0 {
			fmt.Println("No welds found")
			return nil
		}
		fmt.Printf("Welds (%d):\n", len(welds))
		for _, weld := range welds {
			fmt.Printf("  %s  %s\n", weld.Eid, weld.Title)
		}
		return nil
	},
}

func init() {
	weldCmd.AddCommand(weldGetCmd)
	weldCmd.AddCommand(weldListCmd)
}

// Etch command group
var etchCmd = &cobra.Command{
	Use:   "etch",
	Short: "Signature packet operations",
}

var etchCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a signature packet",
	Long: `Creates a signature packet from the payload read from --in (or
stdin). Files named with --file are uploaded alongside the mutation; the
flag may repeat, each value as id=path.

Example:
  anvil etch create --in packet.json --file contract=./contract.pdf`,
	RunE: func(cmd *cobra.Command, args []string) error {
		in, _ := cmd.Flags().GetString("in")
		fileFlags, _ := cmd.Flags().GetStringToString("file")

		data, err := readInput(in)
		if err != nil {
			return err
		}
		var payload anvil.CreateEtchPacketPayload
		if err := decodeInput(data, &payload); err != nil {
			return err
		}
		if err := attachFiles(&payload, fileFlags); err != nil {
			return err
		}

		c, err := newClient()
		if err != nil {
			return err
		}

		ctx, cancel := commandContext()
		defer cancel()

		packet, err := c.CreateEtchPacket(ctx, &payload)
		if err != nil {
			return fmt.Errorf("packet creation failed: %w", err)
		}

		if jsonOutput {
			return outputJSON(packet)
		}

		fmt.Printf("Packet created\n")
		fmt.Printf("  Eid: %s\n", packet.Eid)
		fmt.Printf("  Name: %s\n", packet.Name)
		if packet.Status != "" {
			fmt.Printf("  Status: %s\n", packet.Status)
		}
		if packet.DetailsURL != "" {
			fmt.Printf("  Details: %s\n", packet.DetailsURL)
		}
		if packet.DocumentGroup != nil {
			fmt.Printf("  Document group: %s\n", packet.DocumentGroup.Eid)
			for _, signer := range packet.DocumentGroup.Signers {
				fmt.Printf("    Signer: %s <%s> (%s)\n", signer.Name, signer.Email, signer.Eid)
			}
		}
		return nil
	},
}

// attachFiles loads id=path uploads onto the matching payload files.
func attachFiles(payload *anvil.CreateEtchPacketPayload, fileFlags map[string]string) error {
	for id, path := range fileFlags {
		content, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read file for %s: %w", id, err)
		}
		found := false
		for i := range payload.Files {
			if payload.Files[i].ID == id {
				payload.Files[i].File = &anvil.UploadFile{
					Filename: path,
					Data:     content,
				}
				found = true
				break
			}
		}
		if !found {
			return fmt.Errorf("--file %s does not match any file id in the payload", id)
		}
	}
	return nil
}

var etchSignURLCmd = &cobra.Command{
	Use:   "sign-url",
	Short: "Generate an embedded signing URL",
	RunE: func(cmd *cobra.Command, args []string) error {
		signerEid, _ := cmd.Flags().GetString("signer")
		clientUserID, _ := cmd.Flags().GetString("client-user-id")

		if signerEid == "" {
			return fmt.Errorf("--signer is required")
		}
		if clientUserID == "" {
			return fmt.Errorf("--client-user-id is required")
		}

		c, err := newClient()
		if err != nil {
			return err
		}

		ctx, cancel := commandContext()
		defer cancel()

		signURL, err := c.GenerateEtchSigningURL(ctx, signerEid, clientUserID)
		if err != nil {
			return fmt.Errorf("failed to generate signing URL: %w", err)
		}

		if jsonOutput {
			return outputJSON(map[string]string{"url": signURL})
		}
		fmt.Println(signURL)
		return nil
	},
}

var etchListCmd = &cobra.Command{
	Use:   "list",
	Short: "List signature packets",
	RunE: func(cmd *cobra.Command, args []string) error {
		orgEid, _ := cmd.Flags().GetString("organization")
		cursor, _ := cmd.Flags().GetString("cursor")
		limit, _ := cmd.Flags().GetInt("limit")
		all, _ := cmd.Flags().GetBool("all")

		c, err := newClient()
		if err != nil {
			return err
		}

		ctx, cancel := commandContext()
		defer cancel()

		page, err := c.ListEtchPackets(ctx, anvil.ListEtchPacketsOptions{
			OrganizationEid: orgEid,
			Cursor:          cursor,
			Limit:           limit,
		})
		if err != nil {
			return fmt.Errorf("failed to list packets: %w", err)
		}

		var packets []anvil.EtchPacket
		lastPage := page
		for page != nil {
			packets = append(packets, page.Packets...)
			lastPage = page
			if !all {
				break
			}
			page, err = c.NextEtchPackets(ctx, page)
			if err != nil {
				return fmt.Errorf("failed to list packets: %w", err)
			}
		}

		if jsonOutput {
			return outputJSON(map[string]any{
				"packets":  packets,
				"pageInfo": lastPage.PageInfo,
			})
		}

		if len(packets) == 0 {
			fmt.Println("No packets found")
			return nil
		}
		fmt.Printf("Packets (%d):\n", len(packets))
		for _, p := range packets {
			fmt.Printf("  %s  %-12s %s\n", p.Eid, p.Status, p.Name)
		}
		if !all && lastPage.HasNextPage() {
			fmt.Printf("More pages available; next cursor: %s\n", lastPage.PageInfo.EndCursor)
		}
		return nil
	},
}

func init() {
	etchCreateCmd.Flags().String("in", "", "Payload JSON file (default: stdin)")
	etchCreateCmd.Flags().StringToString("file", nil, "Upload as id=path; may repeat")
	etchSignURLCmd.Flags().String("signer", "", "Signer eid (required)")
	etchSignURLCmd.Flags().String("client-user-id", "", "Your user identifier for the signer (required)")
	etchListCmd.Flags().String("organization", "", "Restrict to one organization eid")
	etchListCmd.Flags().String("cursor", "", "Resume from a previous page cursor")
	etchListCmd.Flags().Int("limit", 25, "Page size")
	etchListCmd.Flags().Bool("all", false, "Follow cursors until the last page")

	etchCmd.AddCommand(etchCreateCmd)
	etchCmd.AddCommand(etchSignURLCmd)
	etchCmd.AddCommand(etchListCmd)
}

// Download documents command
var downloadDocumentsCmd = &cobra.Command{
	Use:   "download-documents DOCUMENT_GROUP_EID",
	Short: "Download a completed document group as zip",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		out, _ := cmd.Flags().GetString("out")

		c, err := newClient()
		if err != nil {
			return err
		}

		ctx, cancel := commandContext()
		defer cancel()

		download, err := c.DownloadDocuments(ctx, args[0])
		if err != nil {
			return fmt.Errorf("download failed: %w", err)
		}
		return writeDownload(download, out)
	},
}

func init() {
	downloadDocumentsCmd.Flags().String("out", "", "Output zip file (default: stdout)")
}

// Forge submit command
var forgeSubmitCmd = &cobra.Command{
	Use:   "forge-submit",
	Short: "Create or update a webform submission",
	RunE: func(cmd *cobra.Command, args []string) error {
		in, _ := cmd.Flags().GetString("in")

		data, err := readInput(in)
		if err != nil {
			return err
		}
		var payload anvil.ForgeSubmitPayload
		if err := decodeInput(data, &payload); err != nil {
			return err
		}

		c, err := newClient()
		if err != nil {
			return err
		}

		ctx, cancel := commandContext()
		defer cancel()

		submission, err := c.ForgeSubmit(ctx, &payload)
		if err != nil {
			return fmt.Errorf("submission failed: %w", err)
		}

		if jsonOutput {
			return outputJSON(submission)
		}
		fmt.Printf("Submission: %s\n", submission.Eid)
		if submission.Status != "" {
			fmt.Printf("Status: %s\n", submission.Status)
		}
		return nil
	},
}

func init() {
	forgeSubmitCmd.Flags().String("in", "", "Payload JSON file (default: stdin)")
}

// Raw query command
var queryCmd = &cobra.Command{
	Use:   "query",
	Short: "Run a raw GraphQL query",
	Long: `Posts a caller-authored GraphQL document. The document is read
from --document or stdin; variables are given as inline JSON.

Example:
  anvil query --document '{ currentUser { eid } }'`,
	RunE: func(cmd *cobra.Command, args []string) error {
		document, _ := cmd.Flags().GetString("document")
		variablesJSON, _ := cmd.Flags().GetString("variables")

		if document == "" {
			data, err := readInput("")
			if err != nil {
				return err
			}
			document = string(data)
		}

		var variables map[string]any
		if variablesJSON != "" {
			if err := decodeInput([]byte(variablesJSON), &variables); err != nil {
				return err
			}
		}

		c, err := newClient()
		if err != nil {
			return err
		}

		ctx, cancel := commandContext()
		defer cancel()

		result, err := c.Query(ctx, document, variables)
		if err != nil {
			return fmt.Errorf("query failed: %w", err)
		}
		return outputJSON(json.RawMessage(result))
	},
}

func init() {
	queryCmd.Flags().String("document", "", "GraphQL document (default: stdin)")
	queryCmd.Flags().String("variables", "", "Variables as inline JSON")
}
