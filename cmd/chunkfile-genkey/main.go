// Command chunkfile-genkey generates fresh key material for a chunkfile
// stream and prints it as hex, ready to drop into a config.yaml's
// stream.key_hex field.
package main

import (
	"encoding/hex"
	"flag"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/chunkfile/chunkfile"
)

func main() {
	var outPath string
	flag.StringVar(&outPath, "out", "", "write the key to this file instead of stdout")
	flag.Parse()

	log := logrus.New()

	key, err := chunkfile.GenerateKey()
	if err != nil {
		log.WithError(err).Fatal("generate key")
	}
	encoded := hex.EncodeToString(key[:])

	if outPath == "" {
		fmt.Println(encoded)
		return
	}
	if err := os.WriteFile(outPath, []byte(encoded+"\n"), 0o600); err != nil {
		log.WithError(err).WithField("path", outPath).Fatal("write key file")
	}
	log.WithField("path", outPath).Info("wrote key")
}
