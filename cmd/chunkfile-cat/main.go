// Command chunkfile-cat pipes a plaintext file through a chunkfile
// stream and back, driven by a config.yaml carrying stream.plain_chunk_size
// and stream.key_hex.
package main

import (
	"flag"
	"io"
	"log"
	"os"

	"github.com/chunkfile/chunkfile"
	"github.com/chunkfile/chunkfile/backing"
	"github.com/chunkfile/chunkfile/config"
)

var (
	mode string
	path string
)

// init registers this command's own flags alongside config.ParseFlags's
// -config flag, then parses everything in one pass and loads the
// configuration, so that a missing or malformed config.yaml - or a bad
// -mode/-file - fails before main does any real work. Registering here,
// before config.ParseFlags calls flag.Parse, matters: that is the only
// Parse call, and it would reject -mode/-file as undefined flags if they
// were not registered yet.
func init() {
	flag.StringVar(&mode, "mode", "", "encrypt or decrypt")
	flag.StringVar(&path, "file", "", "chunkfile-encoded file to operate on")

	cfgPath, err := config.ParseFlags()
	if err != nil {
		log.Fatal(err)
	}
	if _, err := config.NewConfig(cfgPath); err != nil {
		log.Fatal(err)
	}
}

func main() {
	if path == "" {
		log.Fatal("-file is required")
	}

	key := config.GetCurrent().Stream().Key()
	chunkSize := int64(config.GetCurrent().Stream().PlainChunkSize())

	switch mode {
	case "encrypt":
		if err := runEncrypt(path, key, chunkSize); err != nil {
			log.Fatal(err)
		}
	case "decrypt":
		if err := runDecrypt(path, key, chunkSize); err != nil {
			log.Fatal(err)
		}
	default:
		log.Fatalf("unknown -mode %q, want encrypt or decrypt", mode)
	}
}

// runEncrypt reads plaintext from stdin and writes it into a fresh
// chunkfile at path.
func runEncrypt(path string, key chunkfile.Key, chunkSize int64) error {
	store, err := backing.OpenFile(path, true)
	if err != nil {
		return err
	}
	if err := store.Truncate(0); err != nil {
		store.Close()
		return err
	}
	f, err := chunkfile.Open(store, key, chunkSize)
	if err != nil {
		return err
	}
	if _, err := io.Copy(f, os.Stdin); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// runDecrypt opens an existing chunkfile at path read-only and writes its
// cleartext to stdout.
func runDecrypt(path string, key chunkfile.Key, chunkSize int64) error {
	store, err := backing.OpenFile(path, false)
	if err != nil {
		return err
	}
	f, err := chunkfile.Open(store, key, chunkSize)
	if err != nil {
		return err
	}
	defer f.Close()

	got, err := f.ReadToEnd()
	if err != nil {
		return err
	}
	_, err = os.Stdout.Write(got)
	return err
}
