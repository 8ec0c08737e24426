package notary

import (
	"context"
	"regexp"
)

// 需要账户所有者签名的 manifest 方法
var authMethodPattern = regexp.MustCompile(
	`CALL_METHOD\s+Address\("((?:account|identity)_[0-9a-z_]+)"\)\s+"(lock_fee|withdraw|withdraw_non_fungibles|create_proof_of_amount|create_proof_of_non_fungibles|securify)"`)

// StaticAnalyzer 静态扫描 manifest，找出必须签名的实体。
// 账户在被调用提款、锁费或出证方法时需要所有者签名，
// 身份实体出现即需要签名。
type StaticAnalyzer struct{}

// NewStaticAnalyzer 创建 manifest 分析器
func NewStaticAnalyzer() *StaticAnalyzer {
	return &StaticAnalyzer{}
}

// RequiredSigners 返回去重后的账户与身份地址，保持首次出现顺序
func (a *StaticAnalyzer) RequiredSigners(ctx context.Context, manifest string) ([]string, []string, error) {
	seen := make(map[string]struct{})
	var accounts, identities []string

	for _, match := range authMethodPattern.FindAllStringSubmatch(manifest, -1) {
		address := match[1]
		if _, ok := seen[address]; ok {
			continue
		}
		seen[address] = struct{}{}
		if len(address) >= len("identity_") && address[:len("identity_")] == "identity_" {
			identities = append(identities, address)
		} else {
			accounts = append(accounts, address)
		}
	}
	return accounts, identities, nil
}
