package reporter

import (
	"bytes"
	"sync/atomic"

	"github.com/sirupsen/logrus"
)

// flush sends batch as newline separated datagrams. Without a packet size limit the whole batch
// is one datagram; with one, lines are packed greedily and a line which is larger than the limit
// on its own is still sent, alone.
func (r *Reporter) flush(workerID int, batch []string) {
	if len(batch) == 0 {
		return
	}
	atomic.AddUint64(&r.flushes, 1)
	atomic.AddUint64(&r.linesFlushed, uint64(len(batch)))

	buf := r.buffers.Get()
	defer r.buffers.Put(buf)

	lines := 0
	for _, line := range batch {
		if r.maxPacketSize > 0 && buf.Len() > 0 && buf.Len()+1+len(line) > r.maxPacketSize {
			r.send(workerID, buf, lines)
			buf.Reset()
			lines = 0
		}
		if buf.Len() > 0 {
			buf.WriteByte('\n')
		}
		buf.WriteString(line)
		lines++
	}
	r.send(workerID, buf, lines)
}

func (r *Reporter) send(workerID int, buf *bytes.Buffer, lines int) {
	atomic.AddUint64(&r.datagrams, 1)
	if err := r.socket.Send(buf.Bytes()); err != nil {
		atomic.StoreInt32(&r.lastSendFailed, 1)
		atomic.AddUint64(&r.sendErrors, 1)
		r.logger.WithFields(logrus.Fields{
			"worker": workerID,
			"lines":  lines,
			"bytes":  buf.Len(),
		}).WithError(err).Warn("failed to send batch")
		return
	}
	atomic.StoreInt32(&r.lastSendFailed, 0)
}
