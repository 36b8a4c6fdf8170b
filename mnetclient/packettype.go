package mnetclient

// PacketType enumerates the 16-bit wire packet types this core
// supports (spec §6.2). Request/reply codes pair by odd/even
// adjacency within a family.
type PacketType uint16

const (
	TypeRequestData          PacketType = 0x0C28
	TypeReplyData            PacketType = 0x0C29
	TypeRequestMultipleData  PacketType = 0x0C2A
	TypeReplyMultipleData    PacketType = 0x0C2B
	TypeRequestWriteData     PacketType = 0x0C2C
	TypeReplyWriteData       PacketType = 0x0C2D
	TypeRequestSerialDisplay PacketType = 0x0C2E
	TypeReplySerialDisplay   PacketType = 0x0C2F

	TypeRemoteLogin  PacketType = 0x138E
	TypeRemoteLogout PacketType = 0x138F
	TypeNotLoggedIn  PacketType = 0x1390

	// Alarm data request/reply family, 1:4 .. 4:4.
	TypeAlarmDataRequestBase PacketType = 0x0BFB
	TypeAlarmDataReplyBase   PacketType = 0x0BFC

	TypeAcknowledgeAlarm PacketType = 0x0BEA
	TypeRequestAlarmCode PacketType = 0x0BEB
	TypeReplyAlarmCode   PacketType = 0x0BEC
)

// expectedReply returns the reply packet type paired with a request
// type (request_type + 1, spec §3 invariant).
func expectedReply(req PacketType) PacketType {
	return req + 1
}
