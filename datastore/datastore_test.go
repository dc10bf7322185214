/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package datastore_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/suparena/flagstore/datastore"
	"github.com/suparena/flagstore/datastore/mock"
	"github.com/suparena/flagstore/storagemodels"
)

func TestCapabilities(t *testing.T) {
	rw := mock.New("local")
	ro := mock.NewSource("seed", map[string]storagemodels.Value{})

	assert.Equal(t, datastore.CapRead|datastore.CapWrite, datastore.Capabilities(rw))
	assert.Equal(t, datastore.CapRead|datastore.CapList, datastore.Capabilities(ro))
	assert.Equal(t, datastore.Capability(0), datastore.Capabilities(nil))

	_, ok := datastore.AsReadWrite(rw)
	assert.True(t, ok)
	_, ok = datastore.AsReadWrite(ro)
	assert.False(t, ok)
	_, ok = datastore.AsReadOnly(ro)
	assert.True(t, ok)
	_, ok = datastore.AsReadOnly(nil)
	assert.False(t, ok)
}

func TestCapabilityString(t *testing.T) {
	assert.Equal(t, "read|write", (datastore.CapRead | datastore.CapWrite).String())
	assert.Equal(t, "read|list", (datastore.CapRead | datastore.CapList).String())
	assert.Equal(t, "none", datastore.Capability(0).String())
	assert.True(t, (datastore.CapRead | datastore.CapList).Has(datastore.CapList))
	assert.False(t, datastore.CapRead.Has(datastore.CapWrite))
}
