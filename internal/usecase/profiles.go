package usecase

import (
	"math"
	"sort"

	"github.com/sodam/backend/internal/domain"
)

type curveKind int

const (
	curveRampUp curveKind = iota
	curveRampDown
	curveBand
)

// incomeCurve maps an income percentile (0-100) to a 0-100 preference
type incomeCurve struct {
	kind  curveKind
	low   float64
	high  float64
	width float64
}

func rampUp(start, end float64) incomeCurve   { return incomeCurve{kind: curveRampUp, low: start, high: end} }
func rampDown(start, end float64) incomeCurve { return incomeCurve{kind: curveRampDown, low: start, high: end} }
func band(low, high, width float64) incomeCurve {
	return incomeCurve{kind: curveBand, low: low, high: high, width: width}
}

func (c incomeCurve) apply(p float64) float64 {
	switch c.kind {
	case curveRampUp:
		return rampUpScore(p, c.low, c.high)
	case curveRampDown:
		return rampDownScore(p, c.low, c.high)
	default:
		return bandScore(p, c.low, c.high, c.width)
	}
}

type ageBand int

const (
	ages2030 ageBand = iota
	ages4060
)

type genderPref int

const (
	preferFemale genderPref = iota
	preferMale
	preferBalanced
)

func (g genderPref) apply(male, female float64) float64 {
	switch g {
	case preferFemale:
		return female
	case preferMale:
		return male
	default:
		return clip(100 - math.Abs(male-50)*2)
	}
}

// Profile describes how one business type weighs a location
type Profile struct {
	Name    string
	Weights domain.ProfileWeights
	income  incomeCurve
	age     ageBand
	gender  genderPref
}

func pw(base, income, age, gender float64) domain.ProfileWeights {
	return domain.ProfileWeights{Base: base, Income: income, Age: age, Gender: gender}
}

var profiles = []Profile{
	{"베이커리", pw(.50, .15, .25, .10), rampUp(50, 85), ages2030, preferFemale},
	{"국밥집", pw(.50, .25, .20, .05), rampDown(30, 60), ages4060, preferMale},
	{"루프탑 술집", pw(.50, .20, .25, .05), band(60, 90, 20), ages2030, preferBalanced},
	{"철물점", pw(.60, .10, .20, .10), rampDown(40, 70), ages4060, preferMale},
	{"식료품점", pw(.50, .20, .20, .10), rampDown(30, 60), ages4060, preferFemale},

	{"편의점", pw(.50, .15, .25, .10), band(40, 70, 20), ages2030, preferBalanced},
	{"카페", pw(.50, .20, .20, .10), rampUp(55, 85), ages2030, preferFemale},
	{"분식집", pw(.50, .10, .30, .10), rampDown(30, 60), ages2030, preferFemale},
	{"치킨호프", pw(.50, .15, .25, .10), band(45, 70, 20), ages2030, preferMale},
	{"중식당", pw(.55, .15, .20, .10), band(45, 70, 20), ages4060, preferMale},

	{"일식집", pw(.50, .25, .15, .10), rampUp(55, 90), ages2030, preferBalanced},
	{"고급 레스토랑", pw(.50, .35, .10, .05), rampUp(70, 95), ages2030, preferBalanced},
	{"패스트푸드점", pw(.50, .15, .25, .10), band(40, 70, 20), ages2030, preferBalanced},
	{"피자집", pw(.50, .15, .25, .10), band(45, 70, 20), ages2030, preferBalanced},
	{"아이스크림 전문점", pw(.45, .15, .30, .10), band(45, 70, 20), ages2030, preferFemale},

	{"술집(일반포차)", pw(.50, .15, .25, .10), band(45, 70, 20), ages2030, preferMale},
	{"와인바", pw(.50, .30, .15, .05), rampUp(60, 90), ages2030, preferFemale},
	{"노래방", pw(.50, .10, .30, .10), band(40, 70, 20), ages2030, preferBalanced},
	{"PC방", pw(.50, .10, .30, .10), rampDown(30, 60), ages2030, preferMale},
	{"코인노래방", pw(.45, .10, .35, .10), rampDown(30, 60), ages2030, preferBalanced},

	{"오락실", pw(.50, .10, .30, .10), rampDown(30, 60), ages2030, preferMale},
	{"학원(보습/입시)", pw(.55, .25, .15, .05), rampUp(55, 90), ages2030, preferBalanced},
	{"어린이집", pw(.55, .25, .15, .05), band(55, 85, 15), ages2030, preferFemale},
	{"학원(성인/직장인)", pw(.50, .30, .15, .05), rampUp(55, 90), ages2030, preferBalanced},
	{"체육관(헬스장)", pw(.50, .15, .25, .10), band(45, 75, 20), ages2030, preferMale},

	{"요가/필라테스", pw(.50, .25, .15, .10), rampUp(55, 90), ages2030, preferFemale},
	{"뷰티샵(미용실)", pw(.55, .15, .20, .10), band(45, 75, 20), ages2030, preferFemale},
	{"네일샵", pw(.50, .25, .15, .10), rampUp(55, 90), ages2030, preferFemale},
	{"이발소", pw(.55, .15, .20, .10), rampDown(35, 65), ages4060, preferMale},
	{"안경점", pw(.55, .15, .20, .10), band(45, 75, 20), ages2030, preferBalanced},

	{"병원(내과/소아과)", pw(.60, .15, .15, .10), band(45, 80, 20), ages2030, preferBalanced},
	{"치과", pw(.55, .25, .10, .10), rampUp(55, 90), ages2030, preferBalanced},
	{"약국", pw(.60, .15, .15, .10), band(45, 75, 20), ages4060, preferFemale},
	{"세탁소", pw(.55, .15, .20, .10), band(45, 70, 20), ages4060, preferFemale},
	{"꽃집", pw(.50, .25, .15, .10), rampUp(55, 90), ages2030, preferFemale},

	{"서점", pw(.50, .20, .20, .10), rampUp(50, 85), ages2030, preferBalanced},
	{"문구점", pw(.50, .10, .30, .10), rampDown(35, 65), ages2030, preferFemale},
	{"반려동물샵", pw(.50, .25, .15, .10), rampUp(55, 90), ages2030, preferFemale},
	{"가구점", pw(.50, .25, .15, .10), rampUp(60, 90), ages4060, preferBalanced},
	{"전자제품 매장", pw(.50, .25, .15, .10), rampUp(60, 90), ages2030, preferMale},

	{"전통시장 점포", pw(.55, .15, .20, .10), rampDown(30, 60), ages4060, preferFemale},
	{"푸드트럭", pw(.45, .20, .25, .10), rampDown(30, 60), ages2030, preferBalanced},
	{"중고매장(리세일샵)", pw(.50, .15, .25, .10), rampDown(35, 65), ages2030, preferBalanced},
	{"골프연습장", pw(.55, .30, .10, .05), rampUp(65, 95), ages4060, preferMale},
	{"클라이밍장", pw(.50, .20, .25, .05), rampUp(50, 85), ages2030, preferBalanced},

	{"헌책방", pw(.55, .10, .25, .10), rampDown(35, 65), ages2030, preferMale},
	{"사진관", pw(.50, .20, .20, .10), rampUp(50, 85), ages2030, preferFemale},
	{"코워킹 스페이스", pw(.50, .25, .20, .05), rampUp(55, 90), ages2030, preferBalanced},
	{"공유주방", pw(.50, .20, .20, .10), rampUp(50, 85), ages2030, preferBalanced},
	{"전통찻집", pw(.50, .25, .15, .10), rampUp(55, 90), ages4060, preferFemale},
}

var profileIndex = func() map[string]*Profile {
	idx := make(map[string]*Profile, len(profiles))
	for i := range profiles {
		idx[profiles[i].Name] = &profiles[i]
	}
	return idx
}()

// LookupProfile finds the profile for a business type
func LookupProfile(bizType string) (*Profile, bool) {
	p, ok := profileIndex[bizType]
	return p, ok
}

// ProfileNames lists every known business type, sorted
func ProfileNames() []string {
	names := make([]string, 0, len(profiles))
	for _, p := range profiles {
		names = append(names, p.Name)
	}
	sort.Strings(names)
	return names
}

// clip bounds a score to [0, 100]; NaN becomes 0
func clip(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return math.Max(0, math.Min(100, v))
}

// toPercent treats values in [0, 1] as ratios and scales them to percent
func toPercent(x float64) float64 {
	if x >= 0 && x <= 1 {
		return x * 100
	}
	return x
}

func rampUpScore(x, start, end float64) float64 {
	if end <= start {
		return 0
	}
	return clip((x - start) / (end - start) * 100)
}

func rampDownScore(x, start, end float64) float64 {
	if end <= start {
		return 0
	}
	return clip(100 - (x-start)/(end-start)*100)
}

// bandScore is 100 inside [low, high] and falls linearly to 0 over width on each side
func bandScore(x, low, high, width float64) float64 {
	left, right := low-width, high+width
	switch {
	case x < left:
		return 0
	case x < low:
		return clip((x - left) / (low - left) * 100)
	case x <= high:
		return 100
	case x <= right:
		return clip((right - x) / (right - high) * 100)
	default:
		return 0
	}
}

// baseScore averages the location components that are present
func baseScore(feat map[string]float64) float64 {
	var parts []float64
	percent := func(key string) (float64, bool) {
		v, ok := feat[key]
		if !ok {
			return 0, false
		}
		return clip(toPercent(v)), true
	}

	if v, ok := percent("foot_traffic"); ok {
		parts = append(parts, v)
	}
	if v, ok := percent("competitors_500m"); ok {
		parts = append(parts, 100-v)
	}
	if v, ok := percent("rent_cost"); ok {
		parts = append(parts, 100-v)
	}
	accessKey := "accessibility"
	if _, ok := feat["access_score"]; ok {
		accessKey = "access_score"
	}
	if v, ok := percent(accessKey); ok {
		parts = append(parts, v)
	}

	if len(parts) == 0 {
		return 0
	}
	var sum float64
	for _, p := range parts {
		sum += p
	}
	return sum / float64(len(parts))
}

// incomeLookup returns avg_income, falling back to average_income
func incomeLookup(feat map[string]float64) (float64, bool) {
	if v, ok := feat["avg_income"]; ok {
		return v, true
	}
	v, ok := feat["average_income"]
	return v, ok
}

// incomePercentile derives a 0-100 income percentile; 50 when nothing is known
func incomePercentile(feat map[string]float64) float64 {
	for _, key := range []string{"income_percentile", "avg_income_percentile", "income_pct"} {
		if v, ok := feat[key]; ok {
			return clip(v)
		}
	}

	income, hasIncome := incomeLookup(feat)
	minV, hasMin := feat["income_min"]
	maxV, hasMax := feat["income_max"]
	if hasIncome && hasMin && hasMax && maxV > minV {
		return clip((income - minV) / (maxV - minV) * 100)
	}

	if hasIncome {
		if v := toPercent(income); v >= 0 && v <= 100 {
			return clip(v)
		}
	}
	return 50
}

type demographics struct {
	male, female float64
	a2030, a4060 float64
}

func demographicsOf(feat map[string]float64) demographics {
	var d demographics
	male, hasMale := feat["male_ratio"]
	female, hasFemale := feat["female_ratio"]
	switch {
	case !hasMale && !hasFemale:
		d.male, d.female = 50, 50
	case !hasMale:
		d.female = clip(toPercent(female))
		d.male = clip(100 - d.female)
	case !hasFemale:
		d.male = clip(toPercent(male))
		d.female = clip(100 - d.male)
	default:
		d.male = clip(toPercent(male))
		d.female = clip(toPercent(female))
	}

	age := func(key string) float64 { return clip(toPercent(feat[key])) }
	d.a2030 = clip(age("age_20s_ratio") + age("age_30s_ratio"))
	d.a4060 = clip(age("age_40s_ratio") + age("age_50s_ratio") + age("age_60s_ratio"))
	return d
}

// Score rates a location for this business type
func (p *Profile) Score(feat map[string]float64) *domain.ProfileScoreResponse {
	base := clip(baseScore(feat))
	income := clip(p.income.apply(incomePercentile(feat)))

	d := demographicsOf(feat)
	ageInput := d.a2030
	if p.age == ages4060 {
		ageInput = d.a4060
	}
	age := clip(ageInput)
	gender := clip(p.gender.apply(d.male, d.female))

	total := p.Weights.Base*base + p.Weights.Income*income + p.Weights.Age*age + p.Weights.Gender*gender

	return &domain.ProfileScoreResponse{
		Score: roundTo(total, 1),
		Breakdown: domain.ProfileBreakdown{
			Base:    roundTo(base, 1),
			Income:  roundTo(income, 1),
			Age:     roundTo(age, 1),
			Gender:  roundTo(gender, 1),
			Weights: p.Weights,
		},
	}
}
