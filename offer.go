package filexfer

import (
	"fmt"
	"time"

	"github.com/opd-ai/filexfer/file"
	"github.com/opd-ai/filexfer/limits"
	"github.com/opd-ai/filexfer/stanza"
	"github.com/opd-ai/filexfer/transport"
)

// TransferOffer describes a file offered for transfer. The initiator builds
// it from the source metadata; the responder parses it from the request.
// It is not modified after sending.
type TransferOffer struct {
	SessionID         string
	MimeType          string
	Filename          string
	Size              uint64
	Checksum          string
	ChecksumAlgorithm string
	ModifiedAt        *time.Time
	Description       string
	SupportsRange     bool
	Transports        []transport.Method
	// Expires is the advisory lifetime attached by the initiator, zero when
	// none was given.
	Expires time.Duration
}

func newTransferOffer(sid string, meta file.Metadata, desc string, rangeable bool, methods []transport.Method) TransferOffer {
	offer := TransferOffer{
		SessionID:     sid,
		MimeType:      meta.MimeTypeOrDefault(),
		Filename:      meta.Name,
		Size:          meta.Size,
		Checksum:      meta.Checksum,
		ModifiedAt:    meta.ModTime,
		Description:   desc,
		SupportsRange: rangeable,
		Transports:    append([]transport.Method(nil), methods...),
	}
	if meta.Checksum != "" {
		offer.ChecksumAlgorithm = string(meta.ChecksumAlgorithm)
	}
	return offer
}

// Validate checks the offer's metadata fields against the limits package.
// The transport list is not required to be non-empty here.
func (o *TransferOffer) Validate() error {
	checks := []error{
		limits.ValidateSessionID(o.SessionID),
		limits.ValidateFileName(o.Filename),
		limits.ValidateDescription(o.Description),
		limits.ValidateMimeType(o.MimeType),
		limits.ValidateStreamMethods(transport.Strings(o.Transports)),
	}
	for _, err := range checks {
		if err != nil {
			return fmt.Errorf("%w: %w", ErrProtocolViolation, err)
		}
	}
	return nil
}

// request encodes the offer as an SI set addressed to peer.
func (o *TransferOffer) request(id string, peer stanza.JID) *stanza.Message {
	f := &stanza.File{
		Name:          o.Filename,
		Size:          o.Size,
		Hash:          o.Checksum,
		HashAlgorithm: o.ChecksumAlgorithm,
		Date:          o.ModifiedAt,
		Description:   o.Description,
	}
	if o.SupportsRange {
		f.Range = &stanza.Range{}
	}

	msg := &stanza.Message{
		Type: stanza.TypeSet,
		ID:   id,
		To:   peer,
		SI: &stanza.SI{
			ID:       o.SessionID,
			Profile:  stanza.ProfileFileTransfer,
			MimeType: o.MimeType,
			File:     f,
			Feature: &stanza.FeatureForm{
				Type:          stanza.FormTypeForm,
				StreamMethods: transport.Strings(o.Transports),
			},
		},
	}
	if o.Expires > 0 {
		msg.Expire = stanza.NewExpire(o.Expires)
	}
	return msg
}

// isOfferRequest reports whether msg is a file-transfer offer.
func isOfferRequest(msg *stanza.Message) bool {
	return msg.Type == stanza.TypeSet &&
		msg.SI != nil &&
		!msg.SI.Withdraw &&
		msg.SI.Profile == stanza.ProfileFileTransfer &&
		msg.SI.File != nil
}

// isWithdrawRequest reports whether msg withdraws an earlier offer.
func isWithdrawRequest(msg *stanza.Message) bool {
	return msg.Type == stanza.TypeSet && msg.SI != nil && msg.SI.Withdraw
}

// parseOffer decodes an offer request. A missing feature form yields an
// empty transport list; Accept rejects that later.
func parseOffer(msg *stanza.Message) TransferOffer {
	si := msg.SI
	offer := TransferOffer{
		SessionID:         si.ID,
		MimeType:          si.MimeType,
		Filename:          si.File.Name,
		Size:              si.File.Size,
		Checksum:          si.File.Hash,
		ChecksumAlgorithm: si.File.HashAlgorithm,
		Description:       si.File.Description,
		SupportsRange:     si.File.Range != nil,
	}
	if offer.MimeType == "" {
		offer.MimeType = stanza.DefaultMimeType
	}
	if offer.Checksum != "" && offer.ChecksumAlgorithm == "" {
		offer.ChecksumAlgorithm = string(file.ChecksumMD5)
	}
	if si.File.Date != nil {
		d := *si.File.Date
		offer.ModifiedAt = &d
	}
	if si.Feature != nil {
		offer.Transports = transport.MethodsFromStrings(si.Feature.StreamMethods)
	}
	if msg.Expire != nil {
		offer.Expires = msg.Expire.Duration()
	}
	return offer
}

func withdrawRequest(id, sid string, peer stanza.JID) *stanza.Message {
	return &stanza.Message{
		Type: stanza.TypeSet,
		ID:   id,
		To:   peer,
		SI: &stanza.SI{
			ID:       sid,
			Profile:  stanza.ProfileFileTransfer,
			Withdraw: true,
		},
	}
}
