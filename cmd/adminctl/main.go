// adminctl is the operator tool for a thingbox database file. It works on
// the database directly and is meant to run on the host next to the server.
//
// Usage:
//
//	adminctl -db thingbox.db grant twitter 44196397
//	adminctl -db thingbox.db revoke twitter 44196397
//	adminctl -db thingbox.db editor twitter 44196397 true
//	adminctl -db thingbox.db template-add t1 item body.txt
//	adminctl -db thingbox.db template-update t1 item body.txt
//	adminctl -db thingbox.db templates
//	adminctl -db thingbox.db archive 42
//	adminctl -db thingbox.db backup /backups/thingbox-manual.db
//	adminctl genkey
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"

	"github.com/thingbox/thingbox-go/internal/crypto"
	"github.com/thingbox/thingbox-go/internal/repository"
)

func main() {
	dbPath := flag.String("db", "thingbox.db", "path to the database file")
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, "usage: adminctl [-db FILE] COMMAND [ARGS...]")
		os.Exit(2)
	}

	// genkey needs no database.
	if args[0] == "genkey" {
		box, err := crypto.GenerateSealedBox()
		if err != nil {
			fatal(err)
		}
		fmt.Printf("private key (b58): %s\n", box.PrivateKeyB58())
		fmt.Printf("public key (b58):  %s\n", box.PublicKeyB58())
		return
	}

	db, err := repository.Open(*dbPath)
	if err != nil {
		fatal(err)
	}
	defer db.Close()

	store, err := repository.NewStore(db, nil, 16)
	if err != nil {
		fatal(err)
	}

	ctx := context.Background()

	switch cmd, rest := args[0], args[1:]; cmd {
	case "grant":
		expect(rest, 2, "grant TYPE ID")
		if err := store.GrantAdmin(ctx, rest[0], rest[1]); err != nil {
			fatal(err)
		}
		fmt.Printf("granted admin to %s/%s\n", rest[0], rest[1])

	case "revoke":
		expect(rest, 2, "revoke TYPE ID")
		if err := store.RevokeAdmin(ctx, rest[0], rest[1]); err != nil {
			fatal(err)
		}
		fmt.Printf("revoked admin from %s/%s\n", rest[0], rest[1])

	case "editor":
		expect(rest, 3, "editor TYPE ID true|false")
		editor, err := strconv.ParseBool(rest[2])
		if err != nil {
			fatal(fmt.Errorf("editor flag must be true or false: %w", err))
		}
		if err := store.SetEditor(ctx, rest[0], rest[1], editor); err != nil {
			fatal(err)
		}
		fmt.Printf("set editor=%v for %s/%s\n", editor, rest[0], rest[1])

	case "template-add":
		expect(rest, 3, "template-add ID KIND BODYFILE")
		body, err := os.ReadFile(rest[2])
		if err != nil {
			fatal(err)
		}
		if err := store.AddTemplate(ctx, rest[0], rest[1], string(body)); err != nil {
			fatal(err)
		}
		fmt.Printf("added template %s (%s)\n", rest[0], rest[1])

	case "template-update":
		expect(rest, 3, "template-update ID KIND BODYFILE")
		body, err := os.ReadFile(rest[2])
		if err != nil {
			fatal(err)
		}
		if err := store.UpdateTemplate(ctx, rest[0], rest[1], string(body)); err != nil {
			fatal(err)
		}
		fmt.Printf("updated template %s (%s)\n", rest[0], rest[1])

	case "templates":
		templates, err := store.GetTemplates(ctx)
		if err != nil {
			fatal(err)
		}
		for _, t := range templates {
			fmt.Printf("%s\t%s\t%d bytes\n", t.Kind, t.ID, len(t.Body))
		}

	case "archive":
		expect(rest, 1, "archive ITEM_ID")
		id, err := strconv.ParseInt(rest[0], 10, 64)
		if err != nil {
			fatal(fmt.Errorf("item id must be numeric: %w", err))
		}
		if err := store.ArchiveItem(ctx, id); err != nil {
			fatal(err)
		}
		fmt.Printf("archived item %d\n", id)

	case "backup":
		expect(rest, 1, "backup DEST")
		if err := store.Snapshot(ctx, rest[0]); err != nil {
			fatal(err)
		}
		fmt.Printf("backup written to %s\n", rest[0])

	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n", cmd)
		os.Exit(2)
	}
}

func expect(args []string, n int, usage string) {
	if len(args) != n {
		fmt.Fprintf(os.Stderr, "usage: adminctl %s\n", usage)
		os.Exit(2)
	}
}

func fatal(err error) {
	fmt.Fprintln(os.Stderr, "error:", err)
	os.Exit(1)
}
