package model

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"parley/config"
)

// Default wall-clock limit for one provider request.
const requestTimeout = 120 * time.Second

// SendCmd runs a non-streaming dispatch in the background and delivers
// the outcome as a SendDoneMsg.
func SendCmd(d *Dispatcher, req SendRequest) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		req.Streaming = false
		req.OnToken = nil
		return SendDoneMsg{Result: d.Send(ctx, req)}
	}
}

// StreamCmd starts a streaming dispatch. Chunks are pushed onto the
// returned channel as StreamChunkMsg values; the channel is closed after
// the final StreamDoneMsg has been sent. Pair with WaitForStreamMsg to
// relay messages into the update loop.
func StreamCmd(d *Dispatcher, req SendRequest) (tea.Cmd, chan tea.Msg) {
	ch := make(chan tea.Msg, 64)

	cmd := func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		req.Streaming = true
		req.OnToken = func(chunk string) {
			ch <- StreamChunkMsg{Chunk: chunk}
		}

		result := d.Send(ctx, req)
		ch <- StreamDoneMsg{Result: result}
		close(ch)
		return nil
	}

	return cmd, ch
}

// WaitForStreamMsg blocks for the next message on a stream channel.
func WaitForStreamMsg(ch chan tea.Msg) tea.Cmd {
	return func() tea.Msg {
		msg, ok := <-ch
		if !ok {
			return nil
		}
		return msg
	}
}

// ListModelsCmd fetches the model list for one provider.
func ListModelsCmd(p Provider) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		models, err := p.ListModels(ctx)
		if err != nil && config.DebugLog != nil {
			config.DebugLog.Printf("failed to list models for %s: %v", p.Slug(), err)
		}
		return ModelsListMsg{Slug: p.Slug(), Models: models, Err: err}
	}
}
