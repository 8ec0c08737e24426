package notary

import (
	"bytes"

	"github.com/pkg/errors"
	"golang.org/x/crypto/blake2b"
)

// 登录质询载荷的首字节，与链上验证方约定一致
const authChallengePrefix = 0x52

// AuthChallengeHash 构造登录质询的待签哈希。
// 载荷为前缀字节、32 字节质询、dApp 定义地址（带长度字节）与请求来源，
// 取其 BLAKE2b-256。质询长度不足 32 字节视为非法请求。
func AuthChallengeHash(challenge []byte, dappDefinitionAddress, origin string) ([]byte, error) {
	if len(challenge) != 32 {
		return nil, errors.Errorf("auth challenge must be 32 bytes, got %d", len(challenge))
	}
	if len(dappDefinitionAddress) > 255 {
		return nil, errors.New("dapp definition address too long")
	}
	var buf bytes.Buffer
	buf.WriteByte(authChallengePrefix)
	buf.Write(challenge)
	buf.WriteByte(byte(len(dappDefinitionAddress)))
	buf.WriteString(dappDefinitionAddress)
	buf.WriteString(origin)
	sum := blake2b.Sum256(buf.Bytes())
	return sum[:], nil
}
