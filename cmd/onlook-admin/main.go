// onlook-admin operates directly on the store while the daemon is
// stopped (the embedded backends are single-process): pre-seeding
// accounts, managing tokens, and editing the sharing graph.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"

	"git.sr.ht/~jakintosh/onlook/pkg/directory"
	"git.sr.ht/~jakintosh/onlook/pkg/onlooker"
	"git.sr.ht/~jakintosh/onlook/pkg/store"
	"git.sr.ht/~jakintosh/onlook/pkg/store/bolt"
	"git.sr.ht/~jakintosh/onlook/pkg/store/leveldb"
	"git.sr.ht/~jakintosh/onlook/pkg/store/sqlite"
)

const usage = `usage: onlook-admin <command> [flags]

commands:
  account-create   create an account for a federated identity
  account-show     resolve a key to its account (tokens stripped)
  tokens           list an account's token names
  token-create     issue a new API token
  token-delete     revoke tokens by name
  token-clear      revoke every token on an account
  grant            link an onlooker to a creator's app namespace
  revoke           remove a single link
  revoke-onlooker  remove every link between a creator and one onlooker
  revoke-all       remove every link a creator has granted
  links            list both directions of an account's sharing graph
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	command := os.Args[1]
	args := os.Args[2:]

	switch command {
	case "account-create":
		runAccountCreate(args)
	case "account-show":
		runAccountShow(args)
	case "tokens":
		runTokens(args)
	case "token-create":
		runTokenCreate(args)
	case "token-delete":
		runTokenDelete(args)
	case "token-clear":
		runTokenClear(args)
	case "grant":
		runGrant(args)
	case "revoke":
		runRevoke(args)
	case "revoke-onlooker":
		runRevokeOnlooker(args)
	case "revoke-all":
		runRevokeAll(args)
	case "links":
		runLinks(args)
	default:
		fmt.Fprintf(os.Stderr, "unknown command '%s'\n\n%s", command, usage)
		os.Exit(2)
	}
}

// storeFlags registers the shared -backend/-store flags on a flag set.
func storeFlags(fs *flag.FlagSet) (backend *string, path *string) {
	backend = fs.String("backend", "leveldb", "store backend: leveldb, bolt, or sqlite")
	path = fs.String("store", "", "path of the store database")
	return backend, path
}

func openStore(backend string, path string) store.Store {
	if path == "" {
		log.Fatalf("missing required flag -store\n")
	}

	var s store.Store
	var err error
	switch backend {
	case "leveldb":
		s, err = leveldb.Open(path)
	case "bolt":
		s, err = bolt.Open(path)
	case "sqlite":
		s, err = sqlite.Open(path)
	default:
		log.Fatalf("unknown backend '%s' (want leveldb, bolt, or sqlite)\n", backend)
	}
	if err != nil {
		log.Fatalf("failed to open store: %v\n", err)
	}
	return s
}

func runAccountCreate(args []string) {
	fs := flag.NewFlagSet("account-create", flag.ExitOnError)
	backend, path := storeFlags(fs)
	provider := fs.String("provider", "github", "federated identity provider")
	stableID := fs.Int64("id", 0, "provider's stable numeric identifier")
	login := fs.String("login", "", "provider login name")
	_ = fs.Parse(args)
	if *stableID == 0 || *login == "" {
		log.Fatalf("missing required flags -id and -login\n")
	}

	s := openStore(*backend, *path)
	defer s.Close()

	account, err := directory.New(s).FindOrCreateFederated(
		context.Background(),
		directory.Profile{Provider: *provider, ID: *stableID, Login: *login},
		directory.Allowlist{All: true},
	)
	if err != nil {
		log.Fatalf("failed to create account: %v\n", err)
	}
	fmt.Println(account.AccountID)
}

func runAccountShow(args []string) {
	fs := flag.NewFlagSet("account-show", flag.ExitOnError)
	backend, path := storeFlags(fs)
	key := fs.String("key", "", "any directory key (account/…, identity/…, token/…)")
	_ = fs.Parse(args)
	if *key == "" {
		log.Fatalf("missing required flag -key\n")
	}

	s := openStore(*backend, *path)
	defer s.Close()

	account, err := directory.New(s).ResolveAccountSafe(context.Background(), *key)
	if err != nil {
		log.Fatalf("failed to resolve account: %v\n", err)
	}
	printJSON(account)
}

func runTokens(args []string) {
	fs := flag.NewFlagSet("tokens", flag.ExitOnError)
	backend, path := storeFlags(fs)
	accountID := fs.String("account", "", "account id")
	_ = fs.Parse(args)
	if *accountID == "" {
		log.Fatalf("missing required flag -account\n")
	}

	s := openStore(*backend, *path)
	defer s.Close()

	names, err := directory.New(s).ListTokenNames(context.Background(), *accountID)
	if err != nil {
		log.Fatalf("failed to list tokens: %v\n", err)
	}
	for _, name := range names {
		fmt.Println(name)
	}
}

func runTokenCreate(args []string) {
	fs := flag.NewFlagSet("token-create", flag.ExitOnError)
	backend, path := storeFlags(fs)
	accountID := fs.String("account", "", "account id")
	name := fs.String("name", "", "token name")
	_ = fs.Parse(args)
	if *accountID == "" || *name == "" {
		log.Fatalf("missing required flags -account and -name\n")
	}

	s := openStore(*backend, *path)
	defer s.Close()

	token, err := directory.New(s).CreateToken(context.Background(), *accountID, *name)
	if err != nil {
		log.Fatalf("failed to create token: %v\n", err)
	}
	fmt.Println(token)
}

func runTokenDelete(args []string) {
	fs := flag.NewFlagSet("token-delete", flag.ExitOnError)
	backend, path := storeFlags(fs)
	accountID := fs.String("account", "", "account id")
	name := fs.String("name", "", "token name")
	_ = fs.Parse(args)
	if *accountID == "" || *name == "" {
		log.Fatalf("missing required flags -account and -name\n")
	}

	s := openStore(*backend, *path)
	defer s.Close()

	err := directory.New(s).DeleteToken(context.Background(), *accountID, *name)
	if err != nil {
		log.Fatalf("failed to delete token: %v\n", err)
	}
}

func runTokenClear(args []string) {
	fs := flag.NewFlagSet("token-clear", flag.ExitOnError)
	backend, path := storeFlags(fs)
	accountID := fs.String("account", "", "account id")
	_ = fs.Parse(args)
	if *accountID == "" {
		log.Fatalf("missing required flag -account\n")
	}

	s := openStore(*backend, *path)
	defer s.Close()

	err := directory.New(s).DeleteAllTokens(context.Background(), *accountID)
	if err != nil {
		log.Fatalf("failed to delete tokens: %v\n", err)
	}
}

func runGrant(args []string) {
	fs := flag.NewFlagSet("grant", flag.ExitOnError)
	backend, path := storeFlags(fs)
	creator, onlookerID, app := linkFlags(fs)
	_ = fs.Parse(args)
	if *creator == "" || *onlookerID == "" || *app == "" {
		log.Fatalf("missing required flags -creator, -onlooker, and -app\n")
	}

	s := openStore(*backend, *path)
	defer s.Close()

	err := onlooker.New(s).Grant(context.Background(), *creator, *onlookerID, *app)
	if err != nil {
		log.Fatalf("failed to grant: %v\n", err)
	}
}

func runRevoke(args []string) {
	fs := flag.NewFlagSet("revoke", flag.ExitOnError)
	backend, path := storeFlags(fs)
	creator, onlookerID, app := linkFlags(fs)
	_ = fs.Parse(args)
	if *creator == "" || *onlookerID == "" || *app == "" {
		log.Fatalf("missing required flags -creator, -onlooker, and -app\n")
	}

	s := openStore(*backend, *path)
	defer s.Close()

	err := onlooker.New(s).Revoke(context.Background(), *creator, *onlookerID, *app)
	if err != nil {
		log.Fatalf("failed to revoke: %v\n", err)
	}
}

func runRevokeOnlooker(args []string) {
	fs := flag.NewFlagSet("revoke-onlooker", flag.ExitOnError)
	backend, path := storeFlags(fs)
	creator := fs.String("creator", "", "creator account id")
	onlookerID := fs.String("onlooker", "", "onlooker account id")
	_ = fs.Parse(args)
	if *creator == "" || *onlookerID == "" {
		log.Fatalf("missing required flags -creator and -onlooker\n")
	}

	s := openStore(*backend, *path)
	defer s.Close()

	err := onlooker.New(s).RevokeOnlooker(context.Background(), *creator, *onlookerID)
	if err != nil {
		log.Fatalf("failed to revoke onlooker: %v\n", err)
	}
}

func runRevokeAll(args []string) {
	fs := flag.NewFlagSet("revoke-all", flag.ExitOnError)
	backend, path := storeFlags(fs)
	creator := fs.String("creator", "", "creator account id")
	_ = fs.Parse(args)
	if *creator == "" {
		log.Fatalf("missing required flag -creator\n")
	}

	s := openStore(*backend, *path)
	defer s.Close()

	err := onlooker.New(s).RevokeAll(context.Background(), *creator)
	if err != nil {
		log.Fatalf("failed to revoke all: %v\n", err)
	}
}

func runLinks(args []string) {
	fs := flag.NewFlagSet("links", flag.ExitOnError)
	backend, path := storeFlags(fs)
	accountID := fs.String("account", "", "account id")
	_ = fs.Parse(args)
	if *accountID == "" {
		log.Fatalf("missing required flag -account\n")
	}

	s := openStore(*backend, *path)
	defer s.Close()

	links, err := onlooker.New(s).AllLinks(context.Background(), *accountID)
	if err != nil {
		log.Fatalf("failed to list links: %v\n", err)
	}
	printJSON(links)
}

func linkFlags(fs *flag.FlagSet) (creator, onlookerID, app *string) {
	creator = fs.String("creator", "", "creator account id")
	onlookerID = fs.String("onlooker", "", "onlooker account id")
	app = fs.String("app", "", "app namespace")
	return creator, onlookerID, app
}

func printJSON(data any) {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(data); err != nil {
		log.Fatalf("failed to encode output: %v\n", err)
	}
}
