package notary

import (
	"bytes"
	"encoding/binary"
	"encoding/hex"

	"github.com/pkg/errors"
	"golang.org/x/crypto/blake2b"
)

// IntentDraft 待签名的交易意图
type IntentDraft struct {
	Header   Header
	Manifest string
	Blobs    [][]byte
	Message  string
}

// Compile 将意图序列化为确定性字节流。
// 同一意图必须得到同一字节流，否则签名者与公证人对不上哈希。
func (d *IntentDraft) Compile() []byte {
	var buf bytes.Buffer
	buf.WriteByte(d.Header.NetworkID)
	writeUint64(&buf, d.Header.StartEpochInclusive)
	writeUint64(&buf, d.Header.EndEpochExclusive)
	writeUint32(&buf, d.Header.Nonce)
	writeBytes(&buf, d.Header.NotaryPublicKey)
	if d.Header.NotaryIsSignatory {
		buf.WriteByte(1)
	} else {
		buf.WriteByte(0)
	}
	writeUint32(&buf, uint32(d.Header.TipPercentage))
	writeBytes(&buf, []byte(d.Manifest))
	writeUint32(&buf, uint32(len(d.Blobs)))
	for _, blob := range d.Blobs {
		writeBytes(&buf, blob)
	}
	writeBytes(&buf, []byte(d.Message))
	return buf.Bytes()
}

// Hash 编译意图的 BLAKE2b-256 哈希
func (d *IntentDraft) Hash() []byte {
	sum := blake2b.Sum256(d.Compile())
	return sum[:]
}

// SignedIntent 附带全部实体签名的意图
type SignedIntent struct {
	Intent     IntentDraft
	Signatures []SignatureWithPublicKey
}

// Compile 序列化签名后的意图
func (s *SignedIntent) Compile() []byte {
	var buf bytes.Buffer
	buf.Write(s.Intent.Compile())
	writeUint32(&buf, uint32(len(s.Signatures)))
	for _, sig := range s.Signatures {
		writeBytes(&buf, sig.PublicKey)
		writeBytes(&buf, sig.Signature)
	}
	return buf.Bytes()
}

// Hash 编译后的签名意图哈希，公证人对其签名
func (s *SignedIntent) Hash() []byte {
	sum := blake2b.Sum256(s.Compile())
	return sum[:]
}

// NotarizedTransaction 公证完成的交易
type NotarizedTransaction struct {
	SignedIntent    SignedIntent
	NotarySignature []byte
}

// Compile 序列化公证交易，即提交网络的最终字节
func (n *NotarizedTransaction) Compile() ([]byte, error) {
	if len(n.NotarySignature) == 0 {
		return nil, errors.New("notarized transaction has no notary signature")
	}
	var buf bytes.Buffer
	buf.Write(n.SignedIntent.Compile())
	writeBytes(&buf, n.NotarySignature)
	return buf.Bytes(), nil
}

// IntentHashHex 意图哈希的十六进制表示，用于状态轮询与回执
func (n *NotarizedTransaction) IntentHashHex() string {
	return hex.EncodeToString(n.SignedIntent.Intent.Hash())
}

func writeUint32(buf *bytes.Buffer, v uint32) {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], v)
	buf.Write(b[:])
}

func writeUint64(buf *bytes.Buffer, v uint64) {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], v)
	buf.Write(b[:])
}

func writeBytes(buf *bytes.Buffer, b []byte) {
	writeUint32(buf, uint32(len(b)))
	buf.Write(b)
}
