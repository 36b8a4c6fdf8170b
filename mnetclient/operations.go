package mnetclient

import (
	"encoding/binary"
	"time"

	"github.com/mita-teknik/mnet/datapoint"
	"github.com/mita-teknik/mnet/mnerr"
	"github.com/mita-teknik/mnet/model"
	"github.com/mita-teknik/mnet/obfuscate"
)

// GetSerialNumber retrieves the controller's 4-byte serial number and
// derives the obfuscation key from it. It is the mandatory first
// call; its payload is not obfuscated (spec §4.7). On success the
// client transitions Fresh -> SerialKnown.
func (c *Client) GetSerialNumber(dst byte) ([4]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	reply, err := c.transact(dst, TypeRequestSerialDisplay, nil, c.retryBudget(false))
	if err != nil {
		return [4]byte{}, err
	}
	if len(reply.Payload) != 4 {
		return [4]byte{}, mnerr.ErrProtocol
	}
	copy(c.serial[:], reply.Payload)
	c.deriveObfuscationKey()
	c.state = StateSerialKnown
	c.debugf("serial number retrieved: %x", c.serial)
	return c.serial, nil
}

// Login authenticates using the manufacturer code configured in
// Options. The credential payload is obfuscated with the key derived
// from the serial number. On success SerialKnown -> Authenticated.
func (c *Client) Login(dst byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.requireState(StateSerialKnown); err != nil {
		return err
	}
	payload := obfuscate.Encode([]byte{c.opts.LoginCode}, c.key)

	reply, err := c.transact(dst, TypeRemoteLogin, payload, c.retryBudget(false))
	if err != nil {
		return err
	}
	if len(reply.Payload) == 0 || reply.Payload[0] == 0 {
		return mnerr.ErrAuthFailed
	}
	c.state = StateAuthenticated
	c.debugf("login succeeded with code %d", c.opts.LoginCode)
	return nil
}

// RequestData fetches a single named data point under the given
// averaging.
func (c *Client) RequestData(dst byte, name string, avg datapoint.Averaging) (datapoint.Value, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.requireState(StateSerialKnown); err != nil {
		return datapoint.Value{}, err
	}
	desc, ok := c.table.Lookup(name)
	if !ok {
		return datapoint.Value{}, mnerr.ErrProtocol
	}
	item, err := datapoint.NewItem(desc, avg)
	if err != nil {
		return datapoint.Value{}, err
	}

	reply, err := c.transact(dst, TypeRequestData, datapoint.EncodeSingleRequest(item), c.retryBudget(false))
	if err != nil {
		return datapoint.Value{}, err
	}
	return datapoint.DecodeSingleReply(item, reply.Payload)
}

// DataRequest is one (name, averaging) pair in a batch request.
type DataRequest struct {
	Name string
	Avg  datapoint.Averaging
}

// RequestMultipleData fetches a batch of data points, preserving
// request order in the returned slice. Batches larger than
// datapoint.MaxBatch are chunked transparently and results
// concatenated in order (spec §4.7).
func (c *Client) RequestMultipleData(dst byte, reqs []DataRequest) ([]datapoint.Value, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.requireState(StateSerialKnown); err != nil {
		return nil, err
	}

	items := make([]datapoint.Item, len(reqs))
	for i, r := range reqs {
		desc, ok := c.table.Lookup(r.Name)
		if !ok {
			return nil, mnerr.ErrProtocol
		}
		item, err := datapoint.NewItem(desc, r.Avg)
		if err != nil {
			return nil, err
		}
		items[i] = item
	}

	values := make([]datapoint.Value, 0, len(items))
	for start := 0; start < len(items); start += datapoint.MaxBatch {
		end := start + datapoint.MaxBatch
		if end > len(items) {
			end = len(items)
		}
		chunk := items[start:end]

		payload, err := datapoint.EncodeMultiRequest(chunk)
		if err != nil {
			return nil, err
		}
		reply, err := c.transact(dst, TypeRequestMultipleData, payload, c.retryBudget(false))
		if err != nil {
			return nil, err
		}

		raws, err := splitConcatenatedReply(chunk, reply.Payload)
		if err != nil {
			return nil, err
		}
		chunkValues, err := datapoint.DecodeMultiReply(chunk, raws)
		if err != nil {
			return nil, err
		}
		values = append(values, chunkValues...)
	}
	return values, nil
}

// splitConcatenatedReply breaks a Reply Multiple Data payload into
// the per-item byte spans its family widths imply.
func splitConcatenatedReply(items []datapoint.Item, payload []byte) ([][]byte, error) {
	raws := make([][]byte, len(items))
	off := 0
	for i, it := range items {
		width := datapoint.ReplyWidth(it.Desc)
		if off+width > len(payload) {
			return nil, mnerr.ErrProtocol
		}
		raws[i] = payload[off : off+width]
		off += width
	}
	if off != len(payload) {
		return nil, mnerr.ErrProtocol
	}
	return raws, nil
}

// Command selects one of the controller's write-only command points.
type Command uint32

const (
	CommandStart       Command = 1
	CommandStop        Command = 2
	CommandReset       Command = 3
	CommandManualStart Command = 4
)

// SendCommand writes a command value to the controller's command
// data point.
func (c *Client) SendCommand(dst byte, cmd Command) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.requireState(StateAuthenticated); err != nil {
		return err
	}
	desc, ok := c.table.Lookup("Command")
	if !ok {
		return mnerr.ErrProtocol
	}
	item, err := datapoint.NewItem(desc, datapoint.Current)
	if err != nil {
		return err
	}
	payload := datapoint.EncodeWriteRequest(item.ID, uint32(cmd))

	_, err = c.transact(dst, TypeRequestWriteData, payload, c.retryBudget(false))
	return err
}

// controllerTimeID is the fixed time DataID (spec §6.3: 0x000153C3).
// GetControllerTime and SetControllerTime always use it; the
// descriptor table is not consulted for the time point.
var controllerTimeID = datapoint.DataID(0x000153C3)

// GetControllerTime decodes the controller's current UTC time.
func (c *Client) GetControllerTime(dst byte) (time.Time, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.requireState(StateSerialKnown); err != nil {
		return time.Time{}, err
	}
	reqBytes := controllerTimeID.WireBytes()
	reply, err := c.transact(dst, TypeRequestData, reqBytes[:], c.retryBudget(false))
	if err != nil {
		return time.Time{}, err
	}
	if len(reply.Payload) < 4 {
		return time.Time{}, mnerr.ErrBadLength
	}
	raw := binary.BigEndian.Uint32(reply.Payload[:4])
	return datapoint.DecodeTimestamp(raw), nil
}

// SetControllerTime writes t (converted to the controller's epoch)
// via write-data to the fixed time DataID.
func (c *Client) SetControllerTime(dst byte, t time.Time) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.requireState(StateAuthenticated); err != nil {
		return err
	}
	value := datapoint.EncodeTimestamp(t)
	payload := datapoint.EncodeWriteRequest(controllerTimeID, value)

	_, err := c.transact(dst, TypeRequestWriteData, payload, c.retryBudget(false))
	return err
}

// displayRequestMarker is the payload byte distinguishing a display
// fetch from a bare serial-number fetch on the shared 0x0C2E packet
// type (spec §6.2's "Request serial no. / display").
const displayRequestMarker = 0x01

// GetRemoteDisplay fetches the raw 138-byte LCD buffer.
func (c *Client) GetRemoteDisplay(dst byte) (model.DisplayBuffer, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.requireState(StateSerialKnown); err != nil {
		return model.DisplayBuffer{}, err
	}
	reply, err := c.transact(dst, TypeRequestSerialDisplay, []byte{displayRequestMarker}, c.retryBudget(false))
	if err != nil {
		return model.DisplayBuffer{}, err
	}
	if len(reply.Payload) != model.DisplayBufferLength {
		return model.DisplayBuffer{}, mnerr.ErrBadLength
	}
	var buf model.DisplayBuffer
	copy(buf[:], reply.Payload)
	return buf, nil
}

// GetRemoteDisplayText fetches and renders the LCD buffer as trimmed
// 18-char lines.
func (c *Client) GetRemoteDisplayText(dst byte) ([]string, error) {
	buf, err := c.GetRemoteDisplay(dst)
	if err != nil {
		return nil, err
	}
	return buf.Lines(), nil
}
