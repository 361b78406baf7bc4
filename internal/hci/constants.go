// Package hci implements the raw Bluetooth host controller interface used to
// scan for LE advertisements: protocol constants, the kernel event filter,
// command encoding, frame reading and the advertising report decode chain.
package hci

import "fmt"

// PacketType is the H4 packet indicator that prefixes every HCI packet.
type PacketType uint8

const (
	PacketCommand PacketType = 0x01
	PacketACLData PacketType = 0x02
	PacketSCOData PacketType = 0x03
	PacketEvent   PacketType = 0x04
	PacketExtCmd  PacketType = 0x09
	PacketVendor  PacketType = 0xff
)

var packetTypeNames = map[PacketType]string{
	PacketCommand: "command",
	PacketACLData: "acl-data",
	PacketSCOData: "sco-data",
	PacketEvent:   "event",
	PacketExtCmd:  "extended-command",
	PacketVendor:  "vendor",
}

// Valid reports whether t is a known packet type.
func (t PacketType) Valid() bool {
	_, ok := packetTypeNames[t]
	return ok
}

func (t PacketType) String() string {
	if s, ok := packetTypeNames[t]; ok {
		return s
	}
	return fmt.Sprintf("packet-type(0x%02x)", uint8(t))
}

// EventCode identifies an HCI event.
type EventCode uint8

const (
	EventInquiryComplete               EventCode = 0x01
	EventInquiryResult                 EventCode = 0x02
	EventConnComplete                  EventCode = 0x03
	EventConnRequest                   EventCode = 0x04
	EventDisconnComplete               EventCode = 0x05
	EventAuthComplete                  EventCode = 0x06
	EventRemoteNameReqComplete         EventCode = 0x07
	EventEncryptChange                 EventCode = 0x08
	EventChangeConnLinkKeyComplete     EventCode = 0x09
	EventMasterLinkKeyComplete         EventCode = 0x0a
	EventReadRemoteFeaturesComplete    EventCode = 0x0b
	EventReadRemoteVersionComplete     EventCode = 0x0c
	EventQOSSetupComplete              EventCode = 0x0d
	EventCmdComplete                   EventCode = 0x0e
	EventCmdStatus                     EventCode = 0x0f
	EventHardwareError                 EventCode = 0x10
	EventRoleChange                    EventCode = 0x12
	EventNumCompPkts                   EventCode = 0x13
	EventModeChange                    EventCode = 0x14
	EventReturnLinkKeys                EventCode = 0x15
	EventPinCodeReq                    EventCode = 0x16
	EventLinkKeyReq                    EventCode = 0x17
	EventLinkKeyNotify                 EventCode = 0x18
	EventLoopbackCommand               EventCode = 0x19
	EventDataBufferOverflow            EventCode = 0x1a
	EventMaxSlotsChange                EventCode = 0x1b
	EventReadClockOffsetComplete       EventCode = 0x1c
	EventConnPtypeChanged              EventCode = 0x1d
	EventQOSViolation                  EventCode = 0x1e
	EventPscanRepModeChange            EventCode = 0x20
	EventFlowSpecComplete              EventCode = 0x21
	EventInquiryResultWithRSSI         EventCode = 0x22
	EventReadRemoteExtFeaturesComplete EventCode = 0x23
	EventSyncConnComplete              EventCode = 0x2c
	EventSyncConnChanged               EventCode = 0x2d
	EventSniffSubrating                EventCode = 0x2e
	EventExtendedInquiryResult         EventCode = 0x2f
	EventEncryptionKeyRefreshComplete  EventCode = 0x30
	EventIOCapabilityRequest           EventCode = 0x31
	EventIOCapabilityResponse          EventCode = 0x32
	EventUserConfirmRequest            EventCode = 0x33
	EventUserPasskeyRequest            EventCode = 0x34
	EventRemoteOOBDataRequest          EventCode = 0x35
	EventSimplePairingComplete         EventCode = 0x36
	EventLinkSupervisionTimeoutChanged EventCode = 0x38
	EventEnhancedFlushComplete         EventCode = 0x39
	EventUserPasskeyNotify             EventCode = 0x3b
	EventKeypressNotify                EventCode = 0x3c
	EventRemoteHostFeaturesNotify      EventCode = 0x3d
	EventLEMeta                        EventCode = 0x3e
)

var eventCodeNames = map[EventCode]string{
	EventInquiryComplete:               "inquiry-complete",
	EventInquiryResult:                 "inquiry-result",
	EventConnComplete:                  "conn-complete",
	EventConnRequest:                   "conn-request",
	EventDisconnComplete:               "disconn-complete",
	EventAuthComplete:                  "auth-complete",
	EventRemoteNameReqComplete:         "remote-name-req-complete",
	EventEncryptChange:                 "encrypt-change",
	EventChangeConnLinkKeyComplete:     "change-conn-link-key-complete",
	EventMasterLinkKeyComplete:         "master-link-key-complete",
	EventReadRemoteFeaturesComplete:    "read-remote-features-complete",
	EventReadRemoteVersionComplete:     "read-remote-version-complete",
	EventQOSSetupComplete:              "qos-setup-complete",
	EventCmdComplete:                   "cmd-complete",
	EventCmdStatus:                     "cmd-status",
	EventHardwareError:                 "hardware-error",
	EventRoleChange:                    "role-change",
	EventNumCompPkts:                   "num-comp-pkts",
	EventModeChange:                    "mode-change",
	EventReturnLinkKeys:                "return-link-keys",
	EventPinCodeReq:                    "pin-code-req",
	EventLinkKeyReq:                    "link-key-req",
	EventLinkKeyNotify:                 "link-key-notify",
	EventLoopbackCommand:               "loopback-command",
	EventDataBufferOverflow:            "data-buffer-overflow",
	EventMaxSlotsChange:                "max-slots-change",
	EventReadClockOffsetComplete:       "read-clock-offset-complete",
	EventConnPtypeChanged:              "conn-ptype-changed",
	EventQOSViolation:                  "qos-violation",
	EventPscanRepModeChange:            "pscan-rep-mode-change",
	EventFlowSpecComplete:              "flow-spec-complete",
	EventInquiryResultWithRSSI:         "inquiry-result-with-rssi",
	EventReadRemoteExtFeaturesComplete: "read-remote-ext-features-complete",
	EventSyncConnComplete:              "sync-conn-complete",
	EventSyncConnChanged:               "sync-conn-changed",
	EventSniffSubrating:                "sniff-subrating",
	EventExtendedInquiryResult:         "extended-inquiry-result",
	EventEncryptionKeyRefreshComplete:  "encryption-key-refresh-complete",
	EventIOCapabilityRequest:           "io-capability-request",
	EventIOCapabilityResponse:          "io-capability-response",
	EventUserConfirmRequest:            "user-confirm-request",
	EventUserPasskeyRequest:            "user-passkey-request",
	EventRemoteOOBDataRequest:          "remote-oob-data-request",
	EventSimplePairingComplete:         "simple-pairing-complete",
	EventLinkSupervisionTimeoutChanged: "link-supervision-timeout-changed",
	EventEnhancedFlushComplete:         "enhanced-flush-complete",
	EventUserPasskeyNotify:             "user-passkey-notify",
	EventKeypressNotify:                "keypress-notify",
	EventRemoteHostFeaturesNotify:      "remote-host-features-notify",
	EventLEMeta:                        "le-meta",
}

// Valid reports whether e is a known event code.
func (e EventCode) Valid() bool {
	_, ok := eventCodeNames[e]
	return ok
}

func (e EventCode) String() string {
	if s, ok := eventCodeNames[e]; ok {
		return s
	}
	return fmt.Sprintf("event(0x%02x)", uint8(e))
}

// LESubevent is the first byte of an LE Meta event payload.
type LESubevent uint8

const (
	LEConnectionComplete LESubevent = 0x01
	LEAdvertisingReport  LESubevent = 0x02
)

// OGF is the command group field of an HCI opcode.
type OGF uint16

const (
	OGFNone        OGF = 0x00
	OGFLinkControl OGF = 0x01
	OGFLinkPolicy  OGF = 0x02
	OGFHostCtl     OGF = 0x03
	OGFInfoParam   OGF = 0x04
	OGFStatusParam OGF = 0x05
	OGFLECtl       OGF = 0x08
	OGFTestingCmd  OGF = 0x3e
	OGFVendorCmd   OGF = 0x3f
)

// OCF is the command field of an HCI opcode. Only LE controller commands
// are listed.
type OCF uint16

const (
	OCFLESetEventMask               OCF = 0x01
	OCFLEReadBufferSize             OCF = 0x02
	OCFLEReadLocalSupportedFeatures OCF = 0x03
	OCFLESetRandomAddress           OCF = 0x05
	OCFLESetAdvertisingParameters   OCF = 0x06
	OCFLEReadAdvertisingChanTxPower OCF = 0x07
	OCFLESetAdvertisingData         OCF = 0x08
	OCFLESetScanResponseData        OCF = 0x09
	OCFLESetAdvertiseEnable         OCF = 0x0a
	OCFLESetScanParameters          OCF = 0x0b
	OCFLESetScanEnable              OCF = 0x0c
	OCFLECreateConn                 OCF = 0x0d
	OCFLECreateConnCancel           OCF = 0x0e
	OCFLEReadWhiteListSize          OCF = 0x0f
	OCFLEClearWhiteList             OCF = 0x10
	OCFLEAddDeviceToWhiteList       OCF = 0x11
	OCFLERemoveDeviceFromWhiteList  OCF = 0x12
	OCFLEConnUpdate                 OCF = 0x13
	OCFLESetHostChannelClass        OCF = 0x14
	OCFLEReadChannelMap             OCF = 0x15
	OCFLEReadRemoteUsedFeatures     OCF = 0x16
	OCFLEEncrypt                    OCF = 0x17
	OCFLERand                       OCF = 0x18
	OCFLEStartEncryption            OCF = 0x19
	OCFLELTKReply                   OCF = 0x1a
	OCFLELTKNegReply                OCF = 0x1b
	OCFLEReadSupportedStates        OCF = 0x1c
	OCFLEReceiverTest               OCF = 0x1d
	OCFLETransmitterTest            OCF = 0x1e
	OCFLETestEnd                    OCF = 0x1f
	OCFLEAddDeviceToResolvList      OCF = 0x27
	OCFLERemoveDeviceFromResolvList OCF = 0x28
	OCFLEClearResolvList            OCF = 0x29
	OCFLEReadResolvListSize         OCF = 0x2a
	OCFLESetAddressResolutionEnable OCF = 0x2d
)

// Protocol numbers, socket levels and options for AF_BLUETOOTH sockets.
const (
	ProtoHCI = 1 // BTPROTO_HCI

	SolHCI = 0 // SOL_HCI
)

// SocketOption is an option name at level SOL_HCI.
type SocketOption int

const (
	OptDataDir   SocketOption = 1
	OptFilter    SocketOption = 2
	OptTimeStamp SocketOption = 3
)

// Channel selects the HCI socket channel at bind time.
type Channel uint16

const (
	ChannelRaw     Channel = 0
	ChannelUser    Channel = 1
	ChannelMonitor Channel = 2
	ChannelControl Channel = 3
)

// DefaultDevice is the adapter index bound when none is configured (hci0).
const DefaultDevice uint16 = 0

// AdvEventType is the event type of one advertising report.
type AdvEventType uint8

const (
	AdvInd        AdvEventType = 0x00
	AdvDirectInd  AdvEventType = 0x01
	AdvScanInd    AdvEventType = 0x02
	AdvNonConnInd AdvEventType = 0x03
	ScanRsp       AdvEventType = 0x04
)

var advEventTypeNames = map[AdvEventType]string{
	AdvInd:        "adv-ind",
	AdvDirectInd:  "adv-direct-ind",
	AdvScanInd:    "adv-scan-ind",
	AdvNonConnInd: "adv-nonconn-ind",
	ScanRsp:       "scan-rsp",
}

// Valid reports whether t is a known advertising event type.
func (t AdvEventType) Valid() bool {
	_, ok := advEventTypeNames[t]
	return ok
}

func (t AdvEventType) String() string {
	if s, ok := advEventTypeNames[t]; ok {
		return s
	}
	return fmt.Sprintf("adv-event-type(0x%02x)", uint8(t))
}

// AddressType is the address type of the advertiser.
type AddressType uint8

const (
	AddrPublicDevice   AddressType = 0x00
	AddrRandomDevice   AddressType = 0x01
	AddrPublicIdentity AddressType = 0x02
	AddrRandomIdentity AddressType = 0x03
)

var addressTypeNames = map[AddressType]string{
	AddrPublicDevice:   "public",
	AddrRandomDevice:   "random",
	AddrPublicIdentity: "public-identity",
	AddrRandomIdentity: "random-identity",
}

// Valid reports whether t is a known address type.
func (t AddressType) Valid() bool {
	_, ok := addressTypeNames[t]
	return ok
}

func (t AddressType) String() string {
	if s, ok := addressTypeNames[t]; ok {
		return s
	}
	return fmt.Sprintf("address-type(0x%02x)", uint8(t))
}
