package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"coletaflow/internal"
	"coletaflow/internal/catalog"
	"coletaflow/internal/config"
	"coletaflow/internal/docparse"
	"coletaflow/internal/importer"
	"coletaflow/internal/intake"
	gmailconnector "coletaflow/internal/intake/gmail"
	imapconnector "coletaflow/internal/intake/imap"
	"coletaflow/internal/pipeline"
	"coletaflow/internal/storage"
	"coletaflow/internal/tabular"
)

func main() {
	cfg, err := config.Load()
	must(err)

	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	db, err := storage.Open(cfg.DBPath)
	must(err)
	defer db.Close()

	cmd := os.Args[1]
	switch cmd {
	case "import:file":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		input := fs.String("input", "", "input file path")
		entity := fs.String("entity", "collections", "collections|products|clients|technicians|supervisors")
		kind := fs.String("kind", "", "xlsx|csv|json|html (default: from extension)")
		_ = fs.Parse(os.Args[2:])
		if strings.TrimSpace(*input) == "" {
			must(fmt.Errorf("--input is required"))
		}
		count, err := runImport(db, *input, *entity, *kind)
		must(err)
		fmt.Printf("import done entity=%s rows=%d\n", *entity, count)
	case "parse:document":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		input := fs.String("input", "", "text file path")
		save := fs.Bool("save", false, "persist the parsed record")
		_ = fs.Parse(os.Args[2:])
		if strings.TrimSpace(*input) == "" {
			must(fmt.Errorf("--input is required"))
		}
		blob, err := os.ReadFile(*input)
		must(err)
		data := docparse.ParseDocumentText(string(blob))
		printJSON(data)
		if *save {
			id, err := db.InsertCollection(nil, data)
			must(err)
			fmt.Printf("saved collection id=%d unique=%s\n", id, data.UniqueNumber)
		}
	case "parse:cells":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		input := fs.String("input", "", "json file: {\"grid\": [[...]], \"selected\": [\"row:col\", ...]}")
		save := fs.Bool("save", false, "persist the parsed record")
		_ = fs.Parse(os.Args[2:])
		if strings.TrimSpace(*input) == "" {
			must(fmt.Errorf("--input is required"))
		}
		grid, selected, err := readCellsInput(*input)
		must(err)
		data := docparse.ParseSelectedCells(grid, selected)
		printJSON(data)
		if *save {
			id, err := db.InsertCollection(nil, data)
			must(err)
			fmt.Printf("saved collection id=%d unique=%s\n", id, data.UniqueNumber)
		}
	case "docs:fetch":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		provider := fs.String("provider", "gmail", "gmail|imap")
		label := fs.String("label", "INBOX", "mailbox/label")
		max := fs.Int("max", 50, "max messages")
		_ = fs.Parse(os.Args[2:])
		conn, err := makeConnector(cfg, *provider)
		must(err)
		fetch := intake.NewFetchService(db, cfg.RawDocDir, conn)
		result, err := fetch.FetchAndStore(*label, *max)
		must(err)
		fmt.Printf("docs fetch done provider=%s fetched=%d stored=%d\n", *provider, result.Fetched, result.Stored)
	case "docs:process":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		provider := fs.String("provider", "gmail", "gmail|imap")
		messageID := fs.String("messageId", "", "specific message-id")
		batch := fs.Int("batch", 20, "batch size")
		_ = fs.Parse(os.Args[2:])
		processor := pipeline.NewProcessingService(db, cfg)
		if strings.TrimSpace(*messageID) != "" {
			res, err := processor.ProcessByProviderMessageID(*provider, *messageID)
			must(err)
			if res.Skipped {
				fmt.Printf("document id=%d skipped\n", res.DocumentID)
				return
			}
			fmt.Printf("processed document id=%d collection=%d items=%d\n", res.DocumentID, res.CollectionID, res.Items)
			return
		}
		processedDocs, extractedItems, err := processor.ProcessPending(*batch, *provider)
		must(err)
		fmt.Printf("processed pending documents=%d items=%d\n", processedDocs, extractedItems)
	case "docs:listen":
		l := intake.NewListener(db, cfg)
		must(l.Run(context.Background()))
	case "export:xlsx":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		out := fs.String("out", "", "output xlsx path")
		status := fs.String("status", "", "pendente|agendada|concluida (default: all)")
		_ = fs.Parse(os.Args[2:])
		if strings.TrimSpace(*out) == "" {
			must(fmt.Errorf("--out is required"))
		}
		rows, err := db.GetExportRows(*status)
		must(err)
		if len(rows) == 0 {
			must(fmt.Errorf("no export rows"))
		}
		must(pipeline.ExportRowsToXLSX(rows, *out))
		fmt.Printf("exported %d rows to %s\n", len(rows), *out)
	case "catalog:initial-sync":
		svc := catalog.NewSyncService(db, cfg)
		count, err := svc.InitialSync(context.Background())
		must(err)
		fmt.Printf("initial sync complete: %d products\n", count)
	case "catalog:incremental-sync":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		mode := fs.String("mode", "", "day|hour")
		_ = fs.Parse(os.Args[2:])
		if strings.TrimSpace(*mode) == "" {
			must(fmt.Errorf("--mode is required"))
		}
		svc := catalog.NewSyncService(db, cfg)
		count, err := svc.IncrementalSync(context.Background(), *mode)
		must(err)
		fmt.Printf("incremental sync complete mode=%s products=%d\n", *mode, count)
	default:
		usage()
		os.Exit(1)
	}
}

func runImport(db *storage.DB, input, entity, kind string) (int, error) {
	k := tabular.Kind(kind)
	if kind == "" {
		k = kindFromExtension(input)
	}

	rows, err := tabular.ReadFile(input, k)
	if err != nil {
		return 0, err
	}

	switch entity {
	case "collections":
		return db.InsertImportedCollections(importer.MapCollectionRows(rows))
	case "products":
		mapped := importer.MapProductRows(rows)
		products := make([]internal.CatalogProduct, 0, len(mapped))
		for _, p := range mapped {
			products = append(products, internal.CatalogProduct{
				Code:        p.Code,
				Description: p.Description,
				Brand:       p.Brand,
				Model:       p.Model,
				RawJSON:     "{}",
			})
		}
		if err := db.UpsertProducts(products); err != nil {
			return 0, err
		}
		return len(products), nil
	case "clients":
		return db.UpsertClients(importer.MapClientRows(rows))
	case "technicians":
		return db.InsertTechnicians(importer.MapTechnicianRows(rows))
	case "supervisors":
		return db.InsertSupervisors(importer.MapSupervisorRows(rows))
	default:
		return 0, fmt.Errorf("unsupported entity: %s", entity)
	}
}

func kindFromExtension(path string) tabular.Kind {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xls":
		return tabular.KindXLSX
	case ".csv", ".tsv":
		return tabular.KindCSV
	case ".json":
		return tabular.KindJSON
	case ".html", ".htm":
		return tabular.KindHTML
	default:
		return tabular.KindCSV
	}
}

type cellsInput struct {
	Grid     [][]any  `json:"grid"`
	Selected []string `json:"selected"`
}

func readCellsInput(path string) (docparse.Grid, docparse.Selection, error) {
	blob, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, err
	}

	var in cellsInput
	if err := json.Unmarshal(blob, &in); err != nil {
		return nil, nil, err
	}

	selected := docparse.Selection{}
	if len(in.Selected) == 0 {
		for r, row := range in.Grid {
			for c := range row {
				selected[docparse.SelectionKey(r, c)] = struct{}{}
			}
		}
	} else {
		for _, key := range in.Selected {
			selected[key] = struct{}{}
		}
	}

	return docparse.Grid(in.Grid), selected, nil
}

func makeConnector(cfg config.Config, provider string) (intake.MailConnector, error) {
	switch strings.ToLower(strings.TrimSpace(provider)) {
	case "gmail":
		return gmailconnector.NewConnector(cfg)
	case "imap":
		return imapconnector.NewConnector(cfg)
	default:
		return nil, fmt.Errorf("unsupported provider: %s", provider)
	}
}

func printJSON(v any) {
	blob, _ := json.MarshalIndent(v, "", "  ")
	fmt.Println(string(blob))
}

func usage() {
	fmt.Println("usage: coletaflow <command>")
	fmt.Println("commands:")
	fmt.Println("  import:file --input=planilha.xlsx [--entity=collections|products|clients|technicians|supervisors] [--kind=xlsx|csv|json|html]")
	fmt.Println("  parse:document --input=documento.txt [--save]")
	fmt.Println("  parse:cells --input=cells.json [--save]")
	fmt.Println("  docs:fetch --provider=gmail|imap --label=INBOX --max=50")
	fmt.Println("  docs:process --provider=gmail|imap [--messageId=...] [--batch=20]")
	fmt.Println("  docs:listen")
	fmt.Println("  export:xlsx --out=./out/coletas.xlsx [--status=pendente]")
	fmt.Println("  catalog:initial-sync")
	fmt.Println("  catalog:incremental-sync --mode=day|hour")
}

func must(err error) {
	if err == nil {
		return
	}
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	os.Exit(1)
}
