// Command chunkfile-bench measures sequential write and read throughput
// of a chunkfile stream over a real file, for a chosen plaintext chunk
// size and total payload size. It is a sanity check, not a rigorous
// benchmark harness: one run, one number, printed in human units.
package main

import (
	"crypto/rand"
	"flag"
	"os"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/chunkfile/chunkfile"
	"github.com/chunkfile/chunkfile/backing"
)

func main() {
	var (
		totalSize int64
		chunkSize int64
		dir       string
	)
	flag.Int64Var(&totalSize, "size", 64<<20, "total payload size in bytes")
	flag.Int64Var(&chunkSize, "chunk-size", chunkfile.DefaultChunkSize, "plaintext chunk size in bytes")
	flag.StringVar(&dir, "dir", os.TempDir(), "directory to write the scratch file in")
	flag.Parse()

	log := logrus.New()

	payload := make([]byte, totalSize)
	if _, err := rand.Read(payload); err != nil {
		log.WithError(err).Fatal("generate payload")
	}

	path := filepath.Join(dir, "chunkfile-bench-"+uuid.NewString()+".chunk")
	defer os.Remove(path)

	key, err := chunkfile.GenerateKey()
	if err != nil {
		log.WithError(err).Fatal("generate key")
	}

	store, err := backing.OpenFile(path, true)
	if err != nil {
		log.WithError(err).Fatal("open scratch file")
	}
	f, err := chunkfile.Open(store, key, chunkSize)
	if err != nil {
		log.WithError(err).Fatal("open stream")
	}

	writeStart := time.Now()
	if _, err := f.Write(payload); err != nil {
		log.WithError(err).Fatal("write")
	}
	if err := f.Close(); err != nil {
		log.WithError(err).Fatal("close")
	}
	writeElapsed := time.Since(writeStart)

	store2, err := backing.OpenFile(path, false)
	if err != nil {
		log.WithError(err).Fatal("reopen scratch file")
	}
	f2, err := chunkfile.Open(store2, key, chunkSize)
	if err != nil {
		log.WithError(err).Fatal("reopen stream")
	}
	defer f2.Close()

	readStart := time.Now()
	got, err := f2.ReadToEnd()
	if err != nil {
		log.WithError(err).Fatal("read")
	}
	readElapsed := time.Since(readStart)

	if int64(len(got)) != totalSize {
		log.WithFields(logrus.Fields{"got": len(got), "want": totalSize}).Fatal("short read back")
	}

	log.WithFields(logrus.Fields{
		"payload":    humanize.Bytes(uint64(totalSize)),
		"chunk_size": humanize.Bytes(uint64(chunkSize)),
		"write_time": writeElapsed,
		"write_rate": humanize.Bytes(uint64(float64(totalSize)/writeElapsed.Seconds())) + "/s",
		"read_time":  readElapsed,
		"read_rate":  humanize.Bytes(uint64(float64(totalSize)/readElapsed.Seconds())) + "/s",
	}).Info("bench complete")
}
