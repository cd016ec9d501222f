package main

import (
	"os"
	"time"

	"github.com/dot5enko/metatable/io"
	"github.com/dot5enko/metatable/metadata"
	"github.com/dot5enko/metatable/packer"
	"go.uber.org/zap"
)

func main() {
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// timeCycles runs cb n times and logs the time spent per item.
func timeCycles(logger *zap.Logger, n int, label string, items int, cb func()) {

	before := time.Now()

	for range n {
		cb()
	}

	after := time.Since(before)

	perItem := after.Nanoseconds()
	if items > 0 {
		perItem /= int64(items)
	}

	logger.Debug(label, zap.Duration("total", after), zap.Int64("ns_per_item", perItem))
}

// openedTable is a table over a mapped bundle. close releases the mapping, the
// table must not be used afterwards.
type openedTable struct {
	*metadata.Table

	bundle *io.Bundle
	close  func() error
}

func (a *app) openTable(path string) (*openedTable, error) {

	class, err := a.class()
	if err != nil {
		return nil, err
	}

	offsetType, err := a.offsetType()
	if err != nil {
		return nil, err
	}

	bundle, closeBundle, err := io.ReadBundleFile(path)
	if err != nil {
		return nil, err
	}

	table, err := metadata.NewTable(metadata.TableOptions{
		Count:       bundle.Count,
		Class:       class,
		Properties:  packer.Bindings(class, offsetType),
		BufferViews: bundle.BufferViews,
		Host:        a.host(),
		Uid:         bundle.Uid,
	})

	if err != nil {
		closeBundle()
		return nil, err
	}

	a.logger.Debug("opened table",
		zap.String("path", path),
		zap.String("class", class.Id),
		zap.Stringer("uid", bundle.Uid),
		zap.Int("rows", bundle.Count),
		zap.Stringer("compression", bundle.Compression),
	)

	return &openedTable{Table: table, bundle: bundle, close: closeBundle}, nil
}
