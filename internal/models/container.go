package models

import "fmt"

// ContainerKind tells a ContainerRef which table its ID points into.
type ContainerKind string

const (
	KindChannel ContainerKind = "channel"
	KindDm      ContainerKind = "dm"
)

// ContainerRef names a channel or a DM. Code that needs to dispatch on the
// container type switches on Kind instead of checking for a -1 sentinel.
type ContainerRef struct {
	Kind ContainerKind `json:"kind"`
	ID   int64         `json:"id"`
}

func ChannelRef(id int64) ContainerRef { return ContainerRef{Kind: KindChannel, ID: id} }

func DmRef(id int64) ContainerRef { return ContainerRef{Kind: KindDm, ID: id} }

func (r ContainerRef) IsChannel() bool { return r.Kind == KindChannel }

func (r ContainerRef) IsDm() bool { return r.Kind == KindDm }

// WireIDs renders the ref the way clients expect it: channel_id and dm_id,
// with -1 for whichever does not apply.
func (r ContainerRef) WireIDs() (channelID, dmID int64) {
	if r.IsChannel() {
		return r.ID, -1
	}
	return -1, r.ID
}

func (r ContainerRef) String() string {
	return fmt.Sprintf("%s:%d", r.Kind, r.ID)
}
