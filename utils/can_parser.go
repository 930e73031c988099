package utils

import (
	"fmt"
)

// MessageSpec subscribes a Parser to one message and records the rate at which
// the vehicle is expected to send it.
type MessageSpec struct {
	Name        string
	FrequencyHz int
}

type parsedMessage struct {
	def     *FrameDef
	freqHz  int
	values  map[string]float64
	all     map[string][]float64
	updates int
	total   uint64
}

// Parser decodes the frames of one bus against one signal database. It keeps
// the latest value of every subscribed signal plus every value observed since
// the previous Update, for messages that arrive faster than the consumer runs.
//
// A Parser is not safe for concurrent use.
type Parser struct {
	Bus  int
	db   *CANMap
	byID map[uint32]*parsedMessage
	msgs map[string]*parsedMessage
}

// NewParser fails if any subscribed message is missing from the database.
func NewParser(db *CANMap, bus int, specs []MessageSpec) (*Parser, error) {
	p := &Parser{
		Bus:  bus,
		db:   db,
		byID: make(map[uint32]*parsedMessage, len(specs)),
		msgs: make(map[string]*parsedMessage, len(specs)),
	}
	for _, s := range specs {
		fd, err := db.FrameByName(s.Name)
		if err != nil {
			return nil, fmt.Errorf("bus %d: %w", bus, err)
		}
		pm := &parsedMessage{
			def:    fd,
			freqHz: s.FrequencyHz,
			values: make(map[string]float64, len(fd.Signals)),
			all:    make(map[string][]float64, len(fd.Signals)),
		}
		for _, sig := range fd.Signals {
			pm.values[sig.Name] = sig.Default
		}
		p.byID[fd.ID] = pm
		p.msgs[fd.Name] = pm
	}
	return p, nil
}

// Update consumes every frame addressed to this parser's bus and returns how
// many were decoded. Values-since-last-update are reset first.
func (p *Parser) Update(frames []BusFrame) (int, error) {
	for _, pm := range p.msgs {
		pm.updates = 0
		for k := range pm.all {
			delete(pm.all, k)
		}
	}

	n := 0
	var firstErr error
	for _, f := range frames {
		if f.Bus != p.Bus {
			continue
		}
		pm, ok := p.byID[f.Frame.ID]
		if !ok {
			continue
		}
		vals, err := p.db.DecodeFrame(f.Frame.ID, f.Payload())
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		for name, v := range vals {
			pm.values[name] = v
			pm.all[name] = append(pm.all[name], v)
		}
		pm.updates++
		pm.total++
		n++
	}
	return n, firstErr
}

// Lookup returns the latest value of a signal. ok is false when the parser is
// not subscribed to the message or the message has no such signal.
func (p *Parser) Lookup(msg, sig string) (float64, bool) {
	pm, ok := p.msgs[msg]
	if !ok {
		return 0, false
	}
	v, ok := pm.values[sig]
	return v, ok
}

// Value is Lookup without the presence flag; unknown signals read as 0.
func (p *Parser) Value(msg, sig string) float64 {
	v, _ := p.Lookup(msg, sig)
	return v
}

// All returns every value of a signal decoded during the last Update, oldest first.
func (p *Parser) All(msg, sig string) []float64 {
	pm, ok := p.msgs[msg]
	if !ok {
		return nil
	}
	vals := pm.all[sig]
	out := make([]float64, len(vals))
	copy(out, vals)
	return out
}

// Message returns a copy of the latest values of every signal in msg.
func (p *Parser) Message(msg string) map[string]float64 {
	pm, ok := p.msgs[msg]
	if !ok {
		return nil
	}
	out := make(map[string]float64, len(pm.values))
	for k, v := range pm.values {
		out[k] = v
	}
	return out
}

// UpdateCount is the number of times msg was received during the last Update.
func (p *Parser) UpdateCount(msg string) int {
	if pm, ok := p.msgs[msg]; ok {
		return pm.updates
	}
	return 0
}

// Seen reports whether msg has been received at least once.
func (p *Parser) Seen(msg string) bool {
	pm, ok := p.msgs[msg]
	return ok && pm.total > 0
}

// CanValid reports whether every subscribed message has been received at least once.
func (p *Parser) CanValid() bool {
	for _, pm := range p.msgs {
		if pm.total == 0 {
			return false
		}
	}
	return true
}

// Subscribed reports whether the parser decodes msg.
func (p *Parser) Subscribed(msg string) bool {
	_, ok := p.msgs[msg]
	return ok
}

// Database returns the signal database the parser decodes against.
func (p *Parser) Database() *CANMap {
	return p.db
}
