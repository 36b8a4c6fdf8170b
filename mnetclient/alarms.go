package mnetclient

import (
	"encoding/binary"
	"strings"

	"github.com/mita-teknik/mnet/datapoint"
	"github.com/mita-teknik/mnet/mnerr"
	"github.com/mita-teknik/mnet/model"
)

// alarmChunkSize is the controller's alarm batch cap: the packet type
// family spans four batch sizes, 1 through 4 (spec §6.2: "0x0BFB ..
// 0x0C02 | Alarm data request/reply (1:4 .. 4:4)").
const alarmChunkSize = 4

const alarmDescriptionWidth = 32

// alarmRequestType returns the request packet type for a batch of
// count sub-ids (1..4), each batch size occupying its own
// request/reply pair within the family base.
func alarmRequestType(count int) PacketType {
	return TypeAlarmDataRequestBase + PacketType((count-1)*2)
}

// maxKnownAlarmSubID bounds the sub-ids this client enumerates when
// building a full alarm history: GetAlarmHistoryBatch polls sub-ids 0
// through maxKnownAlarmSubID-1 itself, as spec §4.7 defines no
// discovery operation for the sub-id count.
const maxKnownAlarmSubID = 64

// GetAlarmRecord fetches one alarm's current state by sub-id. On the
// first fetch for a given sub-id this also retrieves and caches its
// description; subsequent polls only retrieve last_occurred (spec
// §4.8).
func (c *Client) GetAlarmRecord(dst byte, subID uint16) (model.AlarmRecord, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.requireState(StateSerialKnown); err != nil {
		return model.AlarmRecord{}, err
	}
	records, err := c.fetchAlarmChunkLocked(dst, []uint16{subID})
	if err != nil {
		return model.AlarmRecord{}, err
	}
	return records[0], nil
}

// GetAlarmHistoryBatch fetches every alarm sub-id known to this
// client (see maxKnownAlarmSubID), optionally filtering to only those
// that have occurred. Descriptions are taken from cache after the
// first fetch of each sub-id.
func (c *Client) GetAlarmHistoryBatch(dst byte, onlyOccurred bool) ([]model.AlarmRecord, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.requireState(StateSerialKnown); err != nil {
		return nil, err
	}

	var all []model.AlarmRecord
	for start := 0; start < maxKnownAlarmSubID; start += alarmChunkSize {
		end := start + alarmChunkSize
		if end > maxKnownAlarmSubID {
			end = maxKnownAlarmSubID
		}
		subIDs := make([]uint16, 0, end-start)
		for i := start; i < end; i++ {
			subIDs = append(subIDs, uint16(i))
		}
		records, err := c.fetchAlarmChunkLocked(dst, subIDs)
		if err != nil {
			return all, err
		}
		for _, r := range records {
			if onlyOccurred && !r.HasOccurred {
				continue
			}
			all = append(all, r)
		}
	}
	return all, nil
}

// fetchAlarmChunkLocked requests up to alarmChunkSize sub-ids in one
// transaction. The reply carries, per sub-id: sub_id(2) ||
// timestamp(4) || description(32, present only the first time this
// client has seen that sub-id). Retries use the alarm-specific,
// larger retry budget (spec §6.4: 6 vs 3).
func (c *Client) fetchAlarmChunkLocked(dst byte, subIDs []uint16) ([]model.AlarmRecord, error) {
	if len(subIDs) == 0 || len(subIDs) > alarmChunkSize {
		return nil, mnerr.ErrProtocol
	}

	payload := make([]byte, 0, 2*len(subIDs))
	for _, id := range subIDs {
		payload = binary.BigEndian.AppendUint16(payload, id)
	}

	reqType := alarmRequestType(len(subIDs))
	reply, err := c.transact(dst, reqType, payload, c.retryBudget(true))
	if err != nil {
		return nil, err
	}

	records := make([]model.AlarmRecord, 0, len(subIDs))
	off := 0
	for _, subID := range subIDs {
		if off+6 > len(reply.Payload) {
			return records, mnerr.ErrProtocol
		}
		gotSubID := binary.BigEndian.Uint16(reply.Payload[off : off+2])
		rawTs := binary.BigEndian.Uint32(reply.Payload[off+2 : off+6])
		off += 6

		_, known := c.alarmDescriptions[gotSubID]
		if !known {
			if off+alarmDescriptionWidth > len(reply.Payload) {
				return records, mnerr.ErrProtocol
			}
			desc := strings.TrimRight(string(reply.Payload[off:off+alarmDescriptionWidth]), " \x00")
			c.alarmDescriptions[gotSubID] = desc
			off += alarmDescriptionWidth
		}

		records = append(records, model.NewAlarmRecord(
			gotSubID,
			datapoint.DecodeTimestamp(rawTs),
			c.alarmDescriptions[gotSubID],
		))
	}
	return records, nil
}
