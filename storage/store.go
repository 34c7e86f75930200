package storage

import (
	"context"

	"github.com/ruteri/bitstore/interfaces"
)

// CheckValid returns an *interfaces.InvalidURIError if store rejects uri.
// Every store implementation calls it before touching its backend.
func CheckValid(store interfaces.Store, uri string) error {
	if store.IsValid(uri) {
		return nil
	}
	var hint string
	if h, ok := store.(interfaces.URIHinter); ok {
		hint = h.URIHint()
	}
	return &interfaces.InvalidURIError{Store: store.Name(), URI: uri, Hint: hint}
}

// Put saves data into store if it supports writing.
// Stores without the WritableStore capability return an
// *interfaces.NotImplementedError.
func Put(ctx context.Context, store interfaces.Store, uri string, data []byte) error {
	w, ok := store.(interfaces.WritableStore)
	if !ok {
		return &interfaces.NotImplementedError{Store: store.Name(), Op: "put"}
	}
	return w.Put(ctx, uri, data)
}
