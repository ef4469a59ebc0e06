package synthesis

import (
	"strings"

	"github.com/lizzypokerface/news-hub-aggregator/internal/taxonomy"
)

// Input ceilings, in bytes, applied before text is placed into a prompt.
const (
	maxNarrativeInput = 500_000
	maxContextInput   = 1_000_000
	maxEconomicsInput = 500_000
	minNarrativeInput = 50
)

// regionList is the canonical region list as it appears in prompts.
func regionList() string {
	return strings.Join(taxonomy.Regions(), ", ")
}

func fill(template string, pairs ...string) string {
	return strings.NewReplacer(pairs...).Replace(template)
}

const narrativePrompt = `You are a Mainstream News Analyst. Synthesize the headlines and summaries
below, collected from major global news outlets, into an objective situational report.

Report ONLY what the mainstream sources are saying. Do not add critical analysis,
debunking or alternative theories.

Regions, in this exact order: {regions}.
- Global: stories involving several distinct regions.
- East Asia: Japan, South Korea, North Korea.
- Singapore: only stories specifically about Singapore.
- Southeast Asia: Vietnam, Thailand, Indonesia, Malaysia, Philippines and neighbours.
- South Asia: India, Pakistan, Bangladesh, Sri Lanka.
- West Asia (Middle East): Lebanon, Iran, Saudi Arabia, Palestine and neighbours.
- Europe: includes the UK and the EU.
- North America: the United States and Canada.
- Oceania: Australia, New Zealand, Pacific Islands.

For each region write one coherent paragraph of 150 to 200 words in a neutral,
journalistic tone.

Output format: a level 2 markdown heading per region (for example "## Global")
followed by its paragraph.

INPUT MAINSTREAM HEADLINES:
{input}

REGIONAL SUMMARY:
`

const ledgerPrompt = `You are a political economist and data analyst. Compile a snapshot of the
global economy that reveals power structures, dependency dynamics and each
nation's policy space.

Reference date: {month_year}
Title the response: **Global Economic and Geopolitical Snapshot (as of {month_year})**

Economies, in this order and under these subheadings:
Part A: Global North Economies
- G7 Members: United States, Japan, Germany, United Kingdom, France, Canada
- Other Key Developed Economies: Australia, South Korea
Part B: Global South Economies
- BRICS Members: China, India, Brazil, South Africa, Russia
- Key ASEAN Economies: Indonesia, Vietnam, Singapore
- Key Gulf Economies (GCC): Saudi Arabia, United Arab Emirates (UAE), Qatar, Kuwait

Indicators, each with a short interpretive note in the same cell:
- GDP Growth (%) & Stance: latest YoY growth and the fiscal stance.
- Inflation & Unemployment (%): latest CPI and unemployment and their social impact.
- Current Account (% of GDP): classify as Creditor Nation or Debtor Nation.
- Govt. Debt (% of GDP): contextualize the level.
- Military Spend (% of GDP): latest SIPRI figure against national priorities.
- Sovereignty Indicators: policy rate and foreign exchange reserves, with an
  assessment of monetary sovereignty.

Output a single markdown table with exactly these columns: Country,
GDP Growth (%) & Stance, Inflation & Unemployment (%), Current Account (% of GDP),
Govt. Debt (% of GDP), Military Spend (% of GDP), Sovereignty Indicators.
Use bold rows for the Part A and Part B subheadings. Prefer IMF, World Bank,
OECD and national statistics offices; SIPRI for military spending. Write N/A
for data you cannot find. No introduction and no conclusion.
`

const intelBriefPrompt = `Role: You are an intelligence analyst processing raw source documents for a
decision-maker.

Objective: produce a Triage Card that lets the reader assess the document's
value, tone and critical intel without reading it.

Rules:
1. Process exactly one document.
2. The card must be readable in under 60 seconds.
3. Follow the output format exactly.
4. Every point carries a forward-looking implication.

Output format:
**Triage Tags**
* **Type:** [Strategic Analysis / Battlefield Report / Economic Forecast / Historical Context / Opinion / News Report]
* **Region:** [Primary region discussed]
* **Sentiment:** [Optimistic / Cautiously Optimistic / Neutral / Critical / Alarmist]
* **Key Entities:** [Top 3-4 people, organizations or places]

**5-Point Intel Brief**
* **[Headline in bold]:** [The core fact or claim].
    * *Implication:* [What happens next because of this?]
(At most 5 points. Use fewer for short or low-signal documents. Never invent points.)

Document Content:
{content}
`

const materialistPrompt = `You are The Materialist Analyst. Analyze the text below (news reports,
transcripts, intelligence briefs) and strip away sensationalism, diplomatic
rhetoric and moral posturing. Isolate the economic, physical and geopolitical
mechanics of events through Historical Materialism and Realpolitik.

Directives:
1. Analyze interests, capital flows and strategic depth rather than ideology.
2. Find the material base of each conflict: oil, lithium, semiconductors,
   shipping lanes, land, food.
3. Treat international law and diplomacy as instruments of state power.

Organize the analysis into these sections, each covering 2-3 conflicts or trends:
### 1. Resource Sovereignty & Supply Chains
### 2. Hegemony & Military Industrial Complex
### 3. Multipolarity & De-dollarization
### 4. The Rentier Economy & Financialization
### Synthesis
A two-sentence system status based only on the provided text.

Input Data:
{content}
`

const briefingPrompt = `You are a Geopolitical Strategy Chief. Synthesize the intelligence streams
below into a Global Situation Briefing.

For each region produce two sections:
1. Mainstream Narrative: what mainstream news (layer 2) reports, its tone and
   official story.
2. Strategic Analysis: the material and strategic reality drawn from layers
   1, 3 and 4, contrasted with the mainstream narrative.

Regions, use these names exactly: {regions}.

=== LAYER 1: GLOBAL ECONOMIC SNAPSHOT ===
{econ}

=== LAYER 2: MAINSTREAM HEADLINES ===
{mainstream}

=== LAYER 3: ANALYSIS HEADLINES ===
{analysis}

=== LAYER 4: MATERIALIST ANALYSIS ===
{materialist}

Output format, for every region:
## Region Name
### Mainstream Narrative
[summary]
### Strategic Analysis
[analysis]
`

const multiLensPrompt = `You are Crucible Analyst, a geopolitical analysis engine.

Task: a multi-lens analysis for the region: **{region}**.

INPUT CONTEXT:
{context}

The lenses:
1. The GPE Perspective: historical materialism; who benefits; class interests and imperialism.
2. The Market Fundamentalist: efficiency, incentives, market corrections.
3. The Liberal Institutionalist: international law, norms, human rights, diplomacy.
4. The Realist: distribution of power, security, national interest.
5. The Civilizational Nationalist: identity, culture, civilizational conflict.
6. The Post-Structuralist Critic: how discourse legitimizes power.
7. The Singaporean Strategist: principled pragmatism and omnidirectional engagement.
8. The CPC Strategist: development, stability, long-term national rejuvenation.
9. The Fusion: a concrete, actionable strategy for a sovereign state in this region.

If the context holds no events relevant to {region}, output exactly: {no_data}
Otherwise write all nine lenses, about 150 words each, each under a level 3
heading ("### The Realist"). Do not write a region heading.
`
