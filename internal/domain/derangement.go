package domain

// Rand 随机源（注入，便于测试复现）。*math/rand/v2.Rand 满足该接口。
type Rand interface {
	IntN(n int) int
}

// Derange 返回单环随机置换：每个 id 映射到另一个 id，无不动点，且为双射。
//
// Sattolo 洗牌：i 从末尾递减到 1，j 取 [0, i-1]（严格小于 i），交换。
// 结果是一个 N 环，因此 N >= 2 时不存在自指。N < 2 属调用方错误，直接 panic。
func Derange(ids []UserID, rng Rand) map[UserID]UserID {
	n := len(ids)
	if n < 2 {
		panic("domain: derangement needs at least 2 participants")
	}
	shuffled := make([]UserID, n)
	copy(shuffled, ids)
	for i := n - 1; i >= 1; i-- {
		j := rng.IntN(i)
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	}
	out := make(map[UserID]UserID, n)
	for k, id := range ids {
		out[id] = shuffled[k]
	}
	return out
}
