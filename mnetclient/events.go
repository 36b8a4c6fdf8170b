package mnetclient

import (
	"github.com/mita-teknik/mnet/datapoint"
	"github.com/mita-teknik/mnet/mnerr"
	"github.com/mita-teknik/mnet/model"
)

// eventBaseID is the DataID of event stack index 0; requesting index
// N reads eventBaseID+N, the same "selector folded into the DataID"
// convention the data-point codec uses for averaging (spec §4.5,
// §4.8).
const eventBaseID = datapoint.DataID(0x00002000)

const eventReplyWidth = 64 // code(2) + timestamp(4) + up to 58 bytes of text

// GetEvent fetches one event stack entry by index (0 = most recent).
func (c *Client) GetEvent(dst byte, index uint8) (model.EventRecord, error) {
	if index >= model.MaxEvents {
		return model.EventRecord{}, mnerr.ErrProtocol
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.getEventLocked(dst, index)
}

func (c *Client) getEventLocked(dst byte, index uint8) (model.EventRecord, error) {
	if err := c.requireState(StateSerialKnown); err != nil {
		return model.EventRecord{}, err
	}
	id := eventBaseID + datapoint.DataID(index)
	reqBytes := id.WireBytes()

	reply, err := c.transact(dst, TypeRequestData, reqBytes[:], c.retryBudget(false))
	if err != nil {
		return model.EventRecord{}, err
	}
	if len(reply.Payload) < 6 {
		return model.EventRecord{}, mnerr.ErrBadLength
	}
	return model.ParseEvent(index, reply.Payload), nil
}

// GetEventsBatch fetches up to limit events (capped at
// model.MaxEvents), chunked at model.EventChunkSize entries per
// controller request (spec §4.7), starting from index 0 (most
// recent). Each chunk is fetched as a single Request Multiple Data
// transaction.
func (c *Client) GetEventsBatch(dst byte, limit int) ([]model.EventRecord, error) {
	if limit > model.MaxEvents {
		limit = model.MaxEvents
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.requireState(StateSerialKnown); err != nil {
		return nil, err
	}

	var events []model.EventRecord
	for start := 0; start < limit; start += model.EventChunkSize {
		end := start + model.EventChunkSize
		if end > limit {
			end = limit
		}
		chunk, err := c.fetchEventChunkLocked(dst, start, end)
		if err != nil {
			return events, err
		}
		events = append(events, chunk...)
	}
	return events, nil
}

func (c *Client) fetchEventChunkLocked(dst byte, start, end int) ([]model.EventRecord, error) {
	count := end - start
	payload := make([]byte, 0, 1+4*count)
	payload = append(payload, byte(count))
	for i := start; i < end; i++ {
		id := eventBaseID + datapoint.DataID(i)
		b := id.WireBytes()
		payload = append(payload, b[:]...)
	}

	reply, err := c.transact(dst, TypeRequestMultipleData, payload, c.retryBudget(false))
	if err != nil {
		return nil, err
	}

	events := make([]model.EventRecord, 0, count)
	off := 0
	for i := start; i < end; i++ {
		if off+eventReplyWidth > len(reply.Payload) {
			return events, mnerr.ErrProtocol
		}
		raw := reply.Payload[off : off+eventReplyWidth]
		events = append(events, model.ParseEvent(uint8(i), raw))
		off += eventReplyWidth
	}
	return events, nil
}
