package discord

import (
	"context"
	"net/url"
)

// ChannelRef addresses one channel.
type ChannelRef struct {
	client *Client
	id     string
}

// ID returns the channel id.
func (c *ChannelRef) ID() string { return c.id }

func (c *ChannelRef) path(ids ...string) (string, error) {
	if err := checkIDs(append([]string{c.id}, ids...)...); err != nil {
		return "", err
	}
	return "/channels/" + c.id, nil
}

// Get fetches the channel.
func (c *ChannelRef) Get(ctx context.Context) (*Channel, error) {
	base, err := c.path()
	if err != nil {
		return nil, err
	}
	var ch Channel
	if err := c.client.Get(ctx, base, &ch); err != nil {
		return nil, err
	}
	return &ch, nil
}

// Send posts a plain text message.
func (c *ChannelRef) Send(ctx context.Context, content string) (*Message, error) {
	return c.SendMessage(ctx, MessageParams{Content: content})
}

// SendMessage posts a message.
func (c *ChannelRef) SendMessage(ctx context.Context, params MessageParams) (*Message, error) {
	base, err := c.path()
	if err != nil {
		return nil, err
	}
	var msg Message
	if err := c.client.Post(ctx, base+"/messages", params, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

// Edit modifies the channel.
func (c *ChannelRef) Edit(ctx context.Context, params ChannelParams) (*Channel, error) {
	base, err := c.path()
	if err != nil {
		return nil, err
	}
	var ch Channel
	if err := c.client.Patch(ctx, base, params, &ch); err != nil {
		return nil, err
	}
	return &ch, nil
}

// Delete deletes the channel.
func (c *ChannelRef) Delete(ctx context.Context) (bool, error) {
	base, err := c.path()
	if err != nil {
		return false, err
	}
	return c.client.DeleteOK(ctx, base)
}

// SetPermissions writes a permission overwrite for a role or member.
func (c *ChannelRef) SetPermissions(ctx context.Context, targetID string, allow, deny Permission, kind OverwriteType) (bool, error) {
	base, err := c.path(targetID)
	if err != nil {
		return false, err
	}
	body := Overwrite{ID: targetID, Type: kind, Allow: allow, Deny: deny}
	return c.client.PutOK(ctx, base+"/permissions/"+targetID, body)
}

// DeletePermission removes the overwrite for targetID.
func (c *ChannelRef) DeletePermission(ctx context.Context, targetID string) (bool, error) {
	base, err := c.path(targetID)
	if err != nil {
		return false, err
	}
	return c.client.DeleteOK(ctx, base+"/permissions/"+targetID)
}

// React adds the bot's reaction to a message. emoji is a unicode emoji or
// "name:id" for a custom one.
func (c *ChannelRef) React(ctx context.Context, messageID, emoji string) (bool, error) {
	base, err := c.path(messageID)
	if err != nil {
		return false, err
	}
	return c.client.PutOK(ctx, base+"/messages/"+messageID+"/reactions/"+url.PathEscape(emoji)+"/@me", nil)
}
