// 包 retry 实现面向 LLM 调用的分层重试策略。
//
// 标准层使用指数退避（基础延迟逐次翻倍，最多 3 次尝试）；
// 过载层使用更长的固定延迟阶梯（2s/5s/10s/20s/30s，5 次尝试），
// 因为上游过载的恢复时间远长于一般限流。策略在错误归类后
// 一次性选定：序列中一旦升级到过载层就不再降级。
package retry
