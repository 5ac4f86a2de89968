/*
Copyright (C) 2024-2026  Carl-Philip Hänsch

	This program is free software: you can redistribute it and/or modify
	it under the terms of the GNU General Public License as published by
	the Free Software Foundation, either version 3 of the License, or
	(at your option) any later version.

	This program is distributed in the hope that it will be useful,
	but WITHOUT ANY WARRANTY; without even the implied warranty of
	MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
	GNU General Public License for more details.

	You should have received a copy of the GNU General Public License
	along with this program.  If not, see <https://www.gnu.org/licenses/>.
*/

package query

import nlrm "github.com/launix-de/NonLockingReadMap"

// streamEntry is the element type stored in the NonLockingReadMap:
// name is the key, id the registered stream identifier.
type streamEntry struct {
	name string
	id   uint8
}

func (e streamEntry) GetKey() string    { return e.name }
func (e streamEntry) ComputeSize() uint { return uint(len(e.name)) + 1 }

// StreamConfig is the "external stream-configuration oracle" spec
// §4.2 consumes: a name-to-id registry the parser looks up a leading
// "name:" prefix against. Backed by NonLockingReadMap so that
// concurrent parses (spec §5) can read names while a config loader
// registers more on another goroutine, without a mutex on the hot
// parse path.
type StreamConfig struct {
	m nlrm.NonLockingReadMap[streamEntry, string]
}

// NewStreamConfig returns an empty registry.
func NewStreamConfig() *StreamConfig {
	return &StreamConfig{m: nlrm.New[streamEntry, string]()}
}

// AddMapping registers name as a prefix selecting stream id, per spec
// §6's streamConfig.addMapping(name, ids) entry.
func (c *StreamConfig) AddMapping(name string, id uint8) {
	c.m.Set(&streamEntry{name: name, id: id})
}

// Lookup returns the stream id registered for name, and whether it
// was found at all. A nil *StreamConfig always misses, so callers that
// never use stream prefixes can pass nil per Parse's contract.
func (c *StreamConfig) Lookup(name string) (uint8, bool) {
	if c == nil {
		return 0, false
	}
	e := c.m.Get(name)
	if e == nil {
		return 0, false
	}
	return e.id, true
}
