package interview

// Signal is a named observation about an answer or about the session
type Signal string

// Weak-answer signals
const (
	SignalTooShort         Signal = "too_short"
	SignalVagueExpression  Signal = "vague_expression"
	SignalGenericAnswer    Signal = "generic_answer"
	SignalOptionOnly       Signal = "option_only"
	SignalNoQuantification Signal = "no_quantification"
	SignalSingleSelection  Signal = "single_selection"
)

// Sufficiency signals
const (
	SignalDetailedAnswer   Signal = "detailed_answer"
	SignalMultiPointAnswer Signal = "multi_point_answer"
	SignalQuantifiedAnswer Signal = "quantified_answer"
)

// Fatigue signals
const (
	SignalConsecutiveShort     Signal = "consecutive_short"
	SignalOptionOnlyStreak     Signal = "option_only_streak"
	SignalSameDimensionTooLong Signal = "same_dimension_too_long"
	SignalTotalQuestionsHigh   Signal = "total_questions_high"
)

// Rules is the tunable data behind the evaluator, the trackers and the search prefilter.
// Bump Version whenever a list or threshold changes.
type Rules struct {
	Version string

	Sensitivity        map[string]float64
	DefaultSensitivity float64

	VagueExpressions []string
	GenericAnswers   []string
	// QuantitativeDimensions expect numbers in answers
	QuantitativeDimensions []string
	// MultiPointSeparator marks an answer listing several points
	MultiPointSeparator string

	SignalWeights       map[Signal]float64
	UnknownSignalWeight float64
	SufficiencyWeights  map[Signal]float64
	SignalReasons       map[Signal]string
	DefaultReason       string

	ShortBase              int
	ShortScale             float64
	OptionOnlyMaxLen       int
	NoQuantMaxLen          int
	SingleSelectionMinOpts int
	SingleSelectionMaxLen  int
	DetailedMinLen         int
	MultiPointMinLen       int
	QuantifiedMinLen       int

	FollowUpThreshold   float64
	DeeperEvalThreshold float64

	// AspectSynonyms maps a key aspect to words that also count as covering it
	AspectSynonyms map[string][]string
	ExampleWords   []string
	ContrastWords  []string
	CausalWords    []string
	ListSeparators []string
	DepthSignals   int
	VolumeTarget   int

	SaturationHigh   float64
	SaturationMedium float64

	FatigueWindow        int
	FatigueShortLen      int
	FatigueStreak        int
	FatigueDimensionLogs int
	FatigueTotalLogs     int
	FatigueWeights       map[Signal]float64
	FatigueForce         float64
	FatigueElevated      float64
	ElevatedMinSignals   int

	SearchTechKeywords        []string
	SearchIndustryKeywords    []string
	SearchComplianceKeywords  []string
	SearchTimeKeywords        []string
	SearchUncertaintyKeywords []string
	SearchDimensions          []string
}

// DefaultRules returns the built-in rule set
func DefaultRules() Rules {
	return Rules{
		Version: "2026.1",

		Sensitivity: map[string]float64{
			"customer_needs":      0.8,
			"business_process":    0.6,
			"tech_constraints":    0.5,
			"project_constraints": 0.4,
		},
		DefaultSensitivity: 0.5,

		VagueExpressions: []string{
			"看情况", "不一定", "可能", "或许", "大概", "差不多", "到时候",
			"再说", "还没想好", "不确定", "看具体", "根据情况", "待定",
			"以后再说", "暂时不清楚", "目前还不好说",
			"都可以", "都行", "随便", "无所谓", "一般",
			"不太了解", "没想过", "不知道", "说不好", "很难说",
		},
		GenericAnswers: []string{
			"好的", "是的", "可以", "没问题", "需要", "应该要",
			"对", "嗯", "行", "同意", "没有", "不需要",
		},
		QuantitativeDimensions: []string{"tech_constraints", "project_constraints"},
		MultiPointSeparator:    "；",

		SignalWeights: map[Signal]float64{
			SignalTooShort:         0.4,
			SignalVagueExpression:  0.5,
			SignalGenericAnswer:    0.8,
			SignalOptionOnly:       0.3,
			SignalNoQuantification: 0.2,
			SignalSingleSelection:  0.2,
		},
		UnknownSignalWeight: 0.1,
		SufficiencyWeights: map[Signal]float64{
			SignalDetailedAnswer:   0.5,
			SignalMultiPointAnswer: 0.3,
			SignalQuantifiedAnswer: 0.2,
		},
		SignalReasons: map[Signal]string{
			SignalTooShort:         "回答过于简短，需要补充具体细节",
			SignalVagueExpression:  "回答包含模糊表述，需要明确具体要求",
			SignalGenericAnswer:    "回答过于笼统，需要深入了解具体需求",
			SignalOptionOnly:       "仅选择了预设选项，需要了解具体场景和考量",
			SignalNoQuantification: "缺少量化指标，需要明确具体数据要求",
			SignalSingleSelection:  "只选择了单一选项，需要了解是否还有其他需求",
		},
		DefaultReason: "需要进一步了解详细需求",

		ShortBase:              20,
		ShortScale:             20,
		OptionOnlyMaxLen:       40,
		NoQuantMaxLen:          60,
		SingleSelectionMinOpts: 3,
		SingleSelectionMaxLen:  30,
		DetailedMinLen:         80,
		MultiPointMinLen:       40,
		QuantifiedMinLen:       30,

		FollowUpThreshold:   0.4,
		DeeperEvalThreshold: 0.15,

		AspectSynonyms: map[string][]string{
			"核心痛点": {"痛点", "问题", "困难", "挑战", "困扰"},
			"期望价值": {"价值", "收益", "效果", "目标", "期望"},
			"使用场景": {"场景", "情况", "使用", "应用", "何时"},
			"用户角色": {"用户", "角色", "人员", "谁", "使用者"},
			"关键流程": {"流程", "步骤", "环节", "过程"},
			"角色分工": {"分工", "职责", "负责", "部门"},
			"触发事件": {"触发", "开始", "启动", "何时"},
			"异常处理": {"异常", "错误", "失败", "例外"},
			"部署方式": {"部署", "云", "本地", "服务器"},
			"系统集成": {"集成", "对接", "接口", "系统"},
			"性能要求": {"性能", "响应", "并发", "速度"},
			"安全合规": {"安全", "合规", "权限", "加密"},
			"预算范围": {"预算", "费用", "成本", "价格"},
			"时间节点": {"时间", "期限", "周期", "何时"},
			"资源限制": {"资源", "人力", "团队", "限制"},
			"优先级":  {"优先", "重要", "紧急", "先后"},
		},
		ExampleWords:   []string{"比如", "例如", "当", "如果", "场景", "情况下"},
		ContrastWords:  []string{"而不是", "优先", "相比", "更重要", "首先"},
		CausalWords:    []string{"因为", "由于", "所以", "原因是"},
		ListSeparators: []string{"；", "、"},
		DepthSignals:   5,
		VolumeTarget:   300,

		SaturationHigh:   0.8,
		SaturationMedium: 0.6,

		FatigueWindow:        5,
		FatigueShortLen:      30,
		FatigueStreak:        3,
		FatigueDimensionLogs: 8,
		FatigueTotalLogs:     25,
		FatigueWeights: map[Signal]float64{
			SignalConsecutiveShort:     0.3,
			SignalOptionOnlyStreak:     0.25,
			SignalSameDimensionTooLong: 0.25,
			SignalTotalQuestionsHigh:   0.2,
		},
		FatigueForce:       0.8,
		FatigueElevated:    0.5,
		ElevatedMinSignals: 2,

		SearchTechKeywords: []string{
			"技术", "系统", "平台", "框架", "工具", "软件", "应用", "架构",
			"AI", "人工智能", "机器学习", "深度学习", "大模型", "LLM", "GPT",
			"云", "SaaS", "PaaS", "IaaS", "微服务", "容器", "Docker", "K8s", "Kubernetes",
			"数据库", "中间件", "API", "集成", "部署", "运维", "DevOps",
			"前端", "后端", "全栈", "移动端", "App", "小程序",
		},
		SearchIndustryKeywords: []string{
			"医院", "医疗", "HIS", "LIS", "PACS", "EMR", "电子病历", "DRG", "医保",
			"诊所", "药房", "处方", "挂号", "门诊", "住院", "护理", "CDSS",
			"银行", "保险", "证券", "基金", "信托", "支付", "清算", "风控",
			"反洗钱", "征信", "资管", "理财", "贷款", "信用卡",
			"学校", "教育", "培训", "课程", "教学", "学生", "考试", "招生",
			"在线教育", "网课", "双减", "新课标",
			"工厂", "制造", "生产", "车间", "MES", "ERP", "PLM", "SCM", "WMS",
			"工业互联网", "智能制造", "数字孪生", "质检", "设备", "产线",
			"零售", "电商", "门店", "商城", "订单", "库存", "物流", "配送",
			"会员", "营销", "促销", "CRM", "POS",
			"政府", "政务", "审批", "办事", "公共服务", "智慧城市", "数字政府",
			"电力", "能源", "电网", "新能源", "光伏", "风电", "储能", "充电桩",
			"交通", "运输", "仓储", "TMS", "调度", "车队",
		},
		SearchComplianceKeywords: []string{
			"合规", "标准", "规范", "认证", "等保", "ISO", "GDPR", "隐私",
			"安全", "审计", "法规", "政策", "监管", "资质", "许可证",
		},
		SearchTimeKeywords: []string{
			"最新", "当前", "现在", "近期", "今年", "明年",
			"2024", "2025", "2026", "2027",
			"趋势", "未来", "发展", "动态", "变化", "更新",
			"市场", "行情", "竞品", "对手", "现状",
		},
		SearchUncertaintyKeywords: []string{
			"怎么选", "如何选择", "哪个好", "推荐", "建议", "比较",
			"最佳实践", "业界", "头部", "领先", "主流", "标杆",
		},
		SearchDimensions: []string{"tech_constraints"},
	}
}

// SensitivityFor returns the follow-up sensitivity of a dimension
func (r *Rules) SensitivityFor(dimension string) float64 {
	if s, ok := r.Sensitivity[dimension]; ok {
		return s
	}
	return r.DefaultSensitivity
}

// ReasonFor returns the reason text of the first signal that has one
func (r *Rules) ReasonFor(signals []Signal) string {
	for _, s := range signals {
		if reason, ok := r.SignalReasons[s]; ok {
			return reason
		}
	}
	return r.DefaultReason
}
